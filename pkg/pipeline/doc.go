/*
Package pipeline implements the candidate search pipeline.

A run fetches one page from the directory at the session offset, drops
private profiles and candidates already shown, truncates to the batch size,
ranks each candidate's media by popularity, persists the new ids and
delivers the batch. The offset advances by the batch size, not by the page
size; when both differ, consecutive pages can overlap or skip results.
*/
package pipeline
