// Package dialog implements the per-user conversation state machine.
//
// Every step of domain.Steps has exactly one rule: a validator for the raw
// input and a handler that stores the answer, replies and picks the next
// step. The "restart" command is checked before the table and works from
// any step.
package dialog
