/*
Package tailer is documented on the Tailer type in tailer.go: the
Following/Quiescent/Rotated state machine, and Watcher, an fsnotify
event source for the tailed directory.
*/
package tailer
