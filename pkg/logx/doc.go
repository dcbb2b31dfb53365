// Package logx is ffbot's logging layer: a thin Logger over zerolog with
// typed field helpers, a readable console sink with short file:line callers,
// an optional JSON file sink, and a Service whose sinks and level can be
// swapped while loggers are in use.
package logx
