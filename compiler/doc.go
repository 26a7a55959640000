/*
Package compiler optimizes a hardware design graph.

Pipeline

Producer (front, ir) ->
	Component graph (ir) ->
	verify ->
	forward/backward propagation to a fixpoint (df, prop) ->
	finalize: force compacted widths (prop) ->
Annotated graph ->
	dump (format), width report (report)

Values (value) track which bits of every port and bus are constant
and which are not needed at all.
*/
package compiler
