package model

import "encoding/json"

// Snapshot is one weather document exactly as the provider returned it.
// Nothing inside it is interpreted.
type Snapshot = json.RawMessage
