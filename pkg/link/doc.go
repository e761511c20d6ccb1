// Package link implements the serial link protocol between the CW trainer
// and its network bridge.
package link

// The link carries newline terminated ASCII lines over a point-to-point
// serial channel. It is not recoverable beyond line boundaries: a garbled
// line is dropped. When a line exceeds the buffer, the buffered part is
// discarded and assembling restarts from the following bytes.
//
// Trainer to bridge:
//   STATUS:KEY=VAL,...   session/state fields
//   STATS:KEY=VAL,...    cumulative counters
//   DECODED:<text>       decoded text fragment, appended to a window
//   CURRENT:<text>       text currently being played
//   PING                 keepalive, answered with PONG
//   TEENSY:READY         trainer readiness, answered with PONG
//   RESET_ESP            acknowledged with RESETTING, then the bridge restarts
//
// Bridge to trainer:
//   ESP32:READY          sent when the link starts
//   PONG, RESETTING      replies
//   <command>            opaque control commands from the network side
//
// Producer: trainer firmware
// Consumer: bridge
