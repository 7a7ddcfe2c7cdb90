// Package contract holds the Firestore document schemas shared by the app.
// Field names must match the deployed collections exactly; the mobile client
// reads and writes the same documents.
package contract

import "time"

const (
	UsersCollection    = "users"
	GroupsCollection   = "groups"
	MessagesCollection = "messages" // sub-collection of a group document
)

type User struct {
	UID         string    `firestore:"uid"`
	Email       string    `firestore:"email"`
	Username    string    `firestore:"username"` // lowercase, unique by convention only
	DisplayName string    `firestore:"displayName"`
	CreatedAt   time.Time `firestore:"createdAt,serverTimestamp"`
	UpdatedAt   time.Time `firestore:"updatedAt,serverTimestamp"`
}

type Group struct {
	ID          string    `firestore:"-"`
	Name        string    `firestore:"name"`
	Members     []string  `firestore:"members"` // append-only set of uids
	CreatedBy   string    `firestore:"createdBy"`
	CreatedAt   time.Time `firestore:"createdAt,serverTimestamp"`
	LastMessage string    `firestore:"lastMessage"`
	LastAt      time.Time `firestore:"lastAt,serverTimestamp"`
}

// Message is immutable once written. Exactly one of Text or ImageBase64 is
// expected to be non-empty; the schema does not enforce it.
type Message struct {
	ID          string    `firestore:"-"`
	Text        string    `firestore:"text"`
	SenderID    string    `firestore:"senderId"`
	SenderEmail string    `firestore:"senderEmail"`
	ImageBase64 string    `firestore:"imageBase64,omitempty"`
	ImageType   string    `firestore:"imageType,omitempty"`
	CreatedAt   time.Time `firestore:"createdAt,serverTimestamp"`
}

// IsImage reports whether the message carries an inline image payload.
func (m Message) IsImage() bool {
	return m.ImageBase64 != ""
}
