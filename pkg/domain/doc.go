/*
Package domain contains the core models of the kinder matchmaking agent.

It defines the dialog steps, the search criteria collected from a user, the
per-user Session and the candidates returned by the directory. The package
is kept free of I/O and persistence concerns.

# Key Entities

  - Step: a closed enumeration of dialog positions (None, Age, Gender, City, Status, Final, Again).
  - Criteria: the search fields collected so far, each absent until its step completes.
  - Session: the per-user conversation snapshot (step, criteria, offset, shown set).
  - Candidate: a profile returned by the directory search, with its ranked media.
  - Event: an inbound message from the messaging platform.
*/
package domain
