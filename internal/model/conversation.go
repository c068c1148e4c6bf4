// Package model defines data structures for the support inbox.
package model

import (
	"time"
)

// Channel identifies the origin channel of a conversation.
type Channel string

const (
	ChannelWeb   Channel = "web"
	ChannelEmail Channel = "email"
	ChannelLine  Channel = "line"
	ChannelFB    Channel = "fb"
	ChannelIG    Channel = "ig"
	ChannelOther Channel = "other"
)

// Status is the lifecycle state of a conversation.
type Status string

const (
	StatusOpen    Status = "open"
	StatusPending Status = "pending"
	StatusClosed  Status = "closed"
)

// ValidStatus reports whether s is a known conversation status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusOpen, StatusPending, StatusClosed:
		return true
	}
	return false
}

// Customer is the customer snapshot embedded in a conversation.
type Customer struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CustomName string    `json:"customName"`
	AvatarURL  *string   `json:"avatarUrl"`
	Email      *string   `json:"email"`
	Phone      *string   `json:"phone"`
	Tags       []string  `json:"tags"`
	LoginAt    time.Time `json:"loginAt"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// AgentRole is the role of a support agent.
type AgentRole string

const (
	AgentRoleAgent AgentRole = "agent"
	AgentRoleAdmin AgentRole = "admin"
)

// Agent is a support agent that can be assigned to conversations.
type Agent struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      AgentRole `json:"role"`
	Email     *string   `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MessageSummary is the denormalized projection of a conversation's newest message.
type MessageSummary struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Text      string      `json:"text"`
	CreatedAt time.Time   `json:"createdAt"`
}

// Conversation represents a customer-support conversation thread.
type Conversation struct {
	ID          string          `json:"id"`
	Customer    Customer        `json:"customer"`
	Channel     Channel         `json:"channel"`
	Status      Status          `json:"status"`
	UnreadCount int             `json:"unreadCount"`
	LastMessage *MessageSummary `json:"lastMessage"`
	Assignee    *Agent          `json:"assignee"`
	Tags        []string        `json:"tags"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// SortOrder selects the ordering of a conversation listing.
type SortOrder string

const (
	SortUpdatedDesc SortOrder = "updatedAt_desc"
	SortUpdatedAsc  SortOrder = "updatedAt_asc"
)

// ListConversationsParams are the filters and pagination for a conversation listing.
// Zero values mean "no constraint"; page and page size are clamped to sane defaults.
type ListConversationsParams struct {
	Page         int
	PageSize     int
	Query        string
	Status       Status
	Channel      Channel
	AssigneeID   string
	UnreadOnly   bool
	Sort         SortOrder
	UpdatedAfter *time.Time
}

// PageMeta describes a page of a conversation listing.
type PageMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ConversationPage is one page of a conversation listing.
type ConversationPage struct {
	Conversations []Conversation
	Meta          PageMeta
}

// UpdateStatusRequest is the request to change a conversation's status.
type UpdateStatusRequest struct {
	Status Status `json:"status"`
}
