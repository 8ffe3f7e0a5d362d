// FILE: src/internal/core/const.go
package core

// TimestampLayout renders the HH:MM capture stamp
const TimestampLayout = "15:04"

// DefaultPanelCapacity bounds retained panel lines unless configured otherwise
const DefaultPanelCapacity = 1000

// DefaultSubscriberBuffer sizes per-subscriber line channels
const DefaultSubscriberBuffer = 256
