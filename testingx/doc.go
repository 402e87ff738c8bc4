// Package testingx provides testing helpers and fakes for easylog packages.
//
// # Overview
//
// testingx contains small utilities to speed up unit tests: a recording
// logging backend that can be told to fail or panic, and assertion helpers
// for core/errors codes.
//
// # Features
//
//   - RecordingBackend with in-memory capture and assertions
//   - Failure injection for Configure and Emit
//   - Error assertion helpers for core/errors codes
//
// # Usage
//
//	backend := testingx.NewRecordingBackend(testingx.WithConfigureError(err))
//	testingx.AssertError(t, logger.SetBackend(backend), errors.CodeFailedPrecondition)
//
// # Layer
//
// testingx is an auxiliary package for tests only and depends on core.
package testingx
