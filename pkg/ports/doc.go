/*
Package ports defines the driven ports (interfaces) of the kinder agent.

These interfaces decouple the dialog and the candidate pipeline from the
messaging platform, the directory API and the storage backend.

# Key Interfaces

  - HistoryStore: durable, append-only record of candidates shown to each user.
  - Directory: profile search and media lookup against the external directory.
  - Sender: outbound delivery of messages to a user.
  - EventSource: ordered feed of inbound messages.
*/
package ports
