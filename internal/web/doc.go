// Package web serves the browser dashboard.
//
// All browser actions go through one Session, which owns a dashboard.Store
// and applies messages to it one at a time. Backend requests run as commands
// on background goroutines; when a result lands the Hub pushes a "refresh"
// event over WebSocket and open pages re-render. A page with the edit form
// open ignores refresh events so typed values are not lost.
//
// Actions are plain form posts answered with 303 See Other, so the page works
// without JavaScript apart from live refresh and adding interface rows.
package web
