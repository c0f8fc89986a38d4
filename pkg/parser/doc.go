/*
Package parser implements the Regex Parser (C1): turns a raw byte
buffer from an uploaded log file into a RowBatch by matching each line
against a registered schema's regular expression.

Grounded on original_source/src/ingress/parser.rs, generalized to
treat a non-matching line as a recoverable parse miss (counted via
pkg/metrics) instead of the prototype's panic on an unwrapped capture.
*/
package parser
