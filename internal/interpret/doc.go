// Package interpret turns spoken task-manager utterances into structured data.
//
// It strips command scaffolding from free text (CleanTaskName), extracts due
// dates, status, category and priority (ParseTask), builds declarative
// filters for read requests (ParseQuery), picks the task an utterance refers
// to from a candidate list (Resolve) and decides which status an update asks
// for (ResolveTargetStatus).
//
// Everything here is a pure function of its inputs. The current time is
// always passed in by the caller and no function performs I/O, so values can
// be shared freely between goroutines.
package interpret
