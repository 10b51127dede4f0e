// Package ws adapts gorilla/websocket connections to ports.Conn.
//
// Binary messages carry raw RGBA frames and text messages carry JSON control
// messages. Result frames are written back as binary messages.
package ws
