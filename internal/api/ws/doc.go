/*
Package ws streams desktop input and frames over a WebSocket at /stream.

Clients send types.WSMessage values:

	{"type": "pointer", "pointer": {"kind": "down", "window_id": "notepad", "target": "title", "x": 10, "y": 20}}
	{"type": "key", "key": {"key": "`", "ctrl": true}}
	{"type": "open", "window_id": "terminal"}

The connection reads one message at a time, so events apply in arrival
order. Every message is answered with a "frames" reply carrying the
rendered desktop, or "error" / "pong".
*/
package ws
