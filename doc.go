/*
Package kinder is a conversational matchmaking agent for VK communities.

The agent asks a user for search criteria one question at a time (age,
gender, city, relationship status), searches the VK people directory, and
delivers small batches of public profiles together with their most popular
photos. Every delivered profile is recorded in a durable history, so a user
never sees the same person twice, across restarts included.

# Architecture

The root package wires the pieces; each of them lives in its own package:

  - pkg/dialog: the per-user state machine (one rule per step).
  - pkg/pipeline: search, filter, rank, persist and deliver.
  - pkg/session: the in-memory session cache with per-user locks.
  - pkg/ports: the interfaces to the outside world.
  - pkg/adapters: VK, Redis, SQLite, in-memory, HTTP and console implementations.
  - pkg/runner: the dispatch loop with one ordered queue per user.

# Usage

	agent, err := kinder.New(history, vk.NewDirectory(userClient), vk.NewSender(groupClient),
		kinder.WithLogger(logger),
	)
	if err != nil {
		log.Fatal(err)
	}
	if err := agent.CheckProvisioned(ctx); err != nil {
		log.Fatal(err)
	}
	err = agent.Run(ctx, vk.NewLongPoll(groupClient, groupID))
*/
package kinder
