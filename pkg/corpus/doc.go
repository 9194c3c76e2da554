/*
Package corpus turns input files into token chains for a markov.Model.

It detects the kind of a file from its extension, extracts one text record per
line (plain text), per message (a JSON message log with a top-level "messages"
array), or per row (an SQLite database queried with a configurable statement),
tokenizes each record and delivers every record with enough tokens to a Sink
as one chain.
*/
package corpus
