// Package websocket pushes live updates to open dashboards.
//
// The Hub keeps one Client per browser tab. When a source file changes the
// application calls BroadcastDataUpdate and every dashboard re-fetches the
// named chart:
//
//	{"type":"data_update","data":{"chart":"birth-rate","source":"합계출산율.xlsx"},"timestamp":"..."}
//
// Clients only send heartbeats. A client whose send buffer is full is
// disconnected rather than slowing the hub down.
package websocket
