// Package server exposes a connected bridge over HTTP.
//
// Endpoints:
//
//	GET  /version       engine version
//	GET  /status        connection state, target, device uuid, running flag
//	POST /task          append one task object ({"type":"Fight","stage":"1-7"})
//	POST /plan          append every task of a YAML or JSON plan
//	POST /start         run the queued tasks
//	POST /stop          abort and clear the queue
//	GET  /items         item index path and size
//	GET  /items/{id}    one item index entry
//	GET  /event         Server-Sent Events stream of bus events
//
// Errors are returned as {"error": {"code", "message", "details"}}.
package server
