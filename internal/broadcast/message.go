package broadcast

import "time"

// MessageType enumerates the cross-tab message variants.
type MessageType int

const (
	// ProgressUpdate announces a single pages-read change for one book.
	ProgressUpdate MessageType = iota
	// SyncRequest asks sibling tabs for their current progress snapshot.
	SyncRequest
	// SyncResponse answers a SyncRequest with a full progress map.
	SyncResponse
)

func (t MessageType) String() string {
	switch t {
	case ProgressUpdate:
		return "PROGRESS_UPDATE"
	case SyncRequest:
		return "PROGRESS_SYNC_REQUEST"
	case SyncResponse:
		return "PROGRESS_SYNC_RESPONSE"
	default:
		return ""
	}
}

// Message is the unit of cross-tab communication.
//
// TabID and Timestamp are stamped by [Handle.Send]; senders never set them.
// Progress is populated only for [SyncResponse] messages.
type Message struct {
	Type      MessageType
	BookID    string
	Pages     int
	UserID    string
	Progress  map[string]int
	TabID     string
	Timestamp time.Time
}

// ProgressUpdateMessage builds a ProgressUpdate message.
func ProgressUpdateMessage(bookID string, pages int, userID string) Message {
	return Message{Type: ProgressUpdate, BookID: bookID, Pages: pages, UserID: userID}
}

// SyncRequestMessage builds a SyncRequest message.
func SyncRequestMessage(userID string) Message {
	return Message{Type: SyncRequest, UserID: userID}
}

// SyncResponseMessage builds a SyncResponse message carrying a progress snapshot.
func SyncResponseMessage(progress map[string]int, userID string) Message {
	return Message{Type: SyncResponse, Progress: progress, UserID: userID}
}
