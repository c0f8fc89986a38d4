/*
Package log provides structured logging for siloflow using zerolog.

It wraps zerolog with a package-level Logger, a Config/Init setup step,
and a handful of context-logger helpers that attach the fields this
pipeline cares about: component, agent id, schema id, and bucket+key
(the structured-log-keyed-by-bucket+key requirement for task processing).

Usage:

	log.Init(log.Config{Level: log.InfoLevel, JSONOutput: true})
	log.Info("agent starting")

	agentLog := log.WithAgentID("agent-1")
	agentLog.Info().Int("n", len(urls)).Msg("received upload urls")

	taskLog := log.WithTaskKey(task.Bucket, task.Key)
	taskLog.Error().Err(err).Msg("task failed")
*/
package log
