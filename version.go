package kinder

// Version is the release version, set at build time with
// -ldflags "-X github.com/aretw0/kinder.Version=...".
var Version = "dev"
