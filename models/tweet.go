package models

// Tweet is a post published through the panel.
type Tweet struct {
	ID       int64  `json:"id"`
	TweetID  string `json:"tweet_id"`
	Content  string `json:"content"`
	ClientID *int64 `json:"client_id"`
	PostedAt string `json:"posted_at"`
	Status   string `json:"status"`
}

// TweetReply is a reply to one of our tweets. Processed flips to true once
// the author has been converted into a Creator; it never flips back.
type TweetReply struct {
	ID             int64  `json:"id"`
	TweetID        int64  `json:"tweet_id"`
	ReplyID        string `json:"reply_id"`
	AuthorID       string `json:"author_id"`
	AuthorName     string `json:"author_name"`
	AuthorUsername string `json:"author_username"`
	Content        string `json:"content"`
	CreatedAt      string `json:"created_at"`
	Processed      bool   `json:"processed"`
	CreatorID      *int64 `json:"creator_id"`
}

// DirectMessage is sent to a resolved author id.
type DirectMessage struct {
	UserID  string `json:"user_id" validate:"required"`
	Message string `json:"message" validate:"required"`
}
