/*
Package session implements the in-memory Session Store.

Sessions live for the process lifetime; a missing session is recreated from
the persisted history by the dialog. Callers work on owned copies (look up
once, mutate, write back), and writes for one user are serialized by a
reference-counted per-user lock that is only held around in-memory work.
*/
package session
