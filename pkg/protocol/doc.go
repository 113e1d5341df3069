// Package protocol speaks the line-oriented text protocol of a PioSOLVER
// compatible engine.
//
// A command is a single line: a verb followed by space separated arguments.
// The engine answers with zero or more lines terminated by a configurable end
// marker (END by default). Verbs that produce no payload print "<verb> ok!"
// before the marker. A line starting with ERROR marks a failed command.
//
// Conn allows at most one outstanding command. It does not know about sessions
// or trees; it only frames and classifies.
package protocol
