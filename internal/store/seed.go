package store

import (
	"fmt"
	"time"

	"github.com/relaydesk/support-inbox/internal/model"
)

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

var seedAgent = model.Agent{
	ID:        "u_001",
	Name:      "客服小美",
	Role:      model.AgentRoleAgent,
	Email:     strPtr("ming@example.com"),
	Status:    "active",
	CreatedAt: time.Date(2026, 1, 18, 13, 0, 0, 0, time.UTC),
	UpdatedAt: time.Date(2026, 1, 19, 9, 10, 0, 0, time.UTC),
}

func seedCustomer(id, name, customName string, tags []string) model.Customer {
	if tags == nil {
		tags = []string{}
	}
	return model.Customer{
		ID:         id,
		Name:       name,
		CustomName: customName,
		AvatarURL:  strPtr("https://example.com/avatars/default.png"),
		Tags:       tags,
		LoginAt:    time.Date(2026, 1, 19, 9, 10, 0, 0, time.UTC),
		CreatedAt:  time.Date(2026, 1, 18, 13, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2026, 1, 19, 9, 10, 0, 0, time.UTC),
	}
}

func summary(id string, text string, createdAt time.Time) *model.MessageSummary {
	return &model.MessageSummary{ID: id, Type: model.MessageText, Text: text, CreatedAt: createdAt}
}

func textMessage(id string, sender model.SenderType, senderID, text string, at time.Time) model.Message {
	return model.Message{
		ID:          id,
		SenderType:  sender,
		SenderID:    strPtr(senderID),
		Type:        model.MessageText,
		Text:        strPtr(text),
		Attachments: []model.Attachment{},
		CreatedAt:   at,
		ReadAt:      at,
	}
}

// Seeded returns a store preloaded with the development fixture set: five
// hand-written conversations, twenty generated ones, and the full message
// timeline for c_10001.
func Seeded(latency time.Duration) *Store {
	s := New(latency)
	agent := seedAgent

	fixtures := []model.Conversation{
		{
			ID:          "c_10001",
			Customer:    seedCustomer("cu_88", "王小明", "王聰明", []string{"訂單", "急件"}),
			Channel:     model.ChannelWeb,
			Status:      model.StatusOpen,
			UnreadCount: 2,
			LastMessage: summary("m_90008", "Great question! Your cart items are automatically saved for 7 days.", time.Date(2026, 1, 24, 10, 30, 0, 0, time.UTC)),
			Assignee:    &agent,
			Tags:        []string{"訂單", "急件"},
			CreatedAt:   time.Date(2026, 1, 24, 9, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2026, 1, 24, 10, 30, 0, 0, time.UTC),
		},
		{
			ID:          "c_10002",
			Customer:    seedCustomer("cu_89", "Sarah Johnson", "Sarah J.", nil),
			Channel:     model.ChannelLine,
			Status:      model.StatusOpen,
			UnreadCount: 0,
			LastMessage: summary("m_90010", "Request for refund on damaged product", time.Date(2026, 1, 24, 9, 15, 0, 0, time.UTC)),
			Assignee:    &agent,
			Tags:        []string{},
			CreatedAt:   time.Date(2026, 1, 24, 8, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2026, 1, 24, 9, 15, 0, 0, time.UTC),
		},
		{
			ID:          "c_10003",
			Customer:    seedCustomer("cu_90", "Michael Chen", "Michael", nil),
			Channel:     model.ChannelEmail,
			Status:      model.StatusPending,
			UnreadCount: 0,
			LastMessage: summary("m_90012", "How to change my account email address?", time.Date(2026, 1, 24, 8, 45, 0, 0, time.UTC)),
			Assignee:    nil,
			Tags:        []string{},
			CreatedAt:   time.Date(2026, 1, 24, 8, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2026, 1, 24, 8, 45, 0, 0, time.UTC),
		},
		{
			ID:          "c_10004",
			Customer:    seedCustomer("cu_91", "Emma Wilson", "Emma W.", nil),
			Channel:     model.ChannelWeb,
			Status:      model.StatusOpen,
			UnreadCount: 1,
			LastMessage: summary("m_90014", "Shipping delay for international order", time.Date(2026, 1, 23, 16, 20, 0, 0, time.UTC)),
			Assignee:    &agent,
			Tags:        []string{},
			CreatedAt:   time.Date(2026, 1, 23, 15, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2026, 1, 23, 16, 20, 0, 0, time.UTC),
		},
		{
			ID:          "c_10005",
			Customer:    seedCustomer("cu_92", "David Brown", "David B.", nil),
			Channel:     model.ChannelLine,
			Status:      model.StatusClosed,
			UnreadCount: 0,
			LastMessage: summary("m_90016", "Product warranty inquiry – resolved", time.Date(2026, 1, 23, 14, 0, 0, 0, time.UTC)),
			Assignee:    &agent,
			Tags:        []string{},
			CreatedAt:   time.Date(2026, 1, 23, 10, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2026, 1, 23, 14, 0, 0, 0, time.UTC),
		},
	}

	channels := []model.Channel{model.ChannelWeb, model.ChannelLine, model.ChannelEmail, model.ChannelFB, model.ChannelIG, model.ChannelOther}
	statuses := []model.Status{model.StatusOpen, model.StatusPending, model.StatusClosed}
	names := []string{
		"Alex Kim", "Jordan Lee", "Taylor Wong", "Casey Liu", "Riley Zhang",
		"Morgan Hu", "Jamie Chen", "Quinn Wang", "Sam Wu", "Robin Xu",
		"Jesse Guo", "Drew Lin", "Kai Huang", "Sky He", "River Deng",
		"Blake Cao", "Reese Ma", "Sage Lu", "Rowan Ye", "Phoenix Jiang",
	}
	for i, name := range names {
		idx := 10006 + i
		at := time.Date(2026, 1, 20+(i%5), 10+(i%8), i%60, 0, 0, time.UTC)
		first := name
		for j, r := range name {
			if r == ' ' {
				first = name[:j]
				break
			}
		}

		unread := 0
		if i%4 == 0 {
			unread = 1
		}
		var assignee *model.Agent
		if i%3 != 0 {
			assignee = &agent
		}
		tags := []string{}
		if i%5 == 0 {
			tags = []string{"VIP"}
		}

		fixtures = append(fixtures, model.Conversation{
			ID:          fmt.Sprintf("c_%d", idx),
			Customer:    seedCustomer(fmt.Sprintf("cu_%d", 90+i), name, first, nil),
			Channel:     channels[i%len(channels)],
			Status:      statuses[i%len(statuses)],
			UnreadCount: unread,
			LastMessage: summary(fmt.Sprintf("m_9%d", 1000+i), fmt.Sprintf("Mock last message %d", idx), at),
			Assignee:    assignee,
			Tags:        tags,
			CreatedAt:   at,
			UpdatedAt:   at,
		})
	}

	for _, conv := range fixtures {
		s.PutConversation(conv)
	}

	screenshot := model.Message{
		ID:         "m_90004",
		SenderType: model.SenderCustomer,
		SenderID:   strPtr("cu_88"),
		Type:       model.MessageFile,
		Text:       strPtr("payment_error_screenshot.png"),
		Attachments: []model.Attachment{{
			FileID:   "f_7788",
			FileName: "payment_error_screenshot.png",
			MimeType: strPtr("image/png"),
			Size:     int64Ptr(345678),
			URL:      strPtr("https://cdn.example.com/uploads/payment_error_screenshot.png"),
		}},
		CreatedAt: time.Date(2026, 1, 24, 9, 21, 0, 0, time.UTC),
		ReadAt:    time.Date(2026, 1, 24, 9, 21, 0, 0, time.UTC),
	}

	timeline := []model.Message{
		textMessage("m_90001", model.SenderCustomer, "cu_88", "Hi, I've been trying to complete my purchase for order #12345 but the payment keeps failing.", time.Date(2026, 1, 24, 9, 0, 0, 0, time.UTC)),
		textMessage("m_90002", model.SenderAgent, "u_001", "可以的，請提供訂單編號。", time.Date(2026, 1, 24, 9, 15, 0, 0, time.UTC)),
		textMessage("m_90003", model.SenderCustomer, "cu_88", "Sure, the last 4 digits are 4532. I've attached a screenshot.", time.Date(2026, 1, 24, 9, 20, 0, 0, time.UTC)),
		screenshot,
		textMessage("m_90005", model.SenderAgent, "u_001", "Thank you for the screenshot. We'll escalate to the payment team.", time.Date(2026, 1, 24, 9, 30, 0, 0, time.UTC)),
		textMessage("m_90006", model.SenderAgent, "u_001", "You should receive an email within 30 minutes. Is there anything else?", time.Date(2026, 1, 24, 10, 0, 0, 0, time.UTC)),
		textMessage("m_90007", model.SenderCustomer, "cu_88", "Will my cart items still be saved?", time.Date(2026, 1, 24, 10, 15, 0, 0, time.UTC)),
		textMessage("m_90008", model.SenderAgent, "u_001", "Great question! Your cart items are automatically saved for 7 days.", time.Date(2026, 1, 24, 10, 30, 0, 0, time.UTC)),
	}
	for _, msg := range timeline {
		s.SeedMessage("c_10001", msg)
	}

	return s
}
