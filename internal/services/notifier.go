package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"google.golang.org/api/option"

	"bnbBack/internal/models"
)

type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMNotifier pushes booking notifications to the ad author's topic "user_<id>".
type FCMNotifier struct {
	client messageSender
	logger *slog.Logger
}

func NewFCMNotifier(ctx context.Context, credentialsFile string, logger *slog.Logger) (*FCMNotifier, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase messaging: %w", err)
	}
	return newFCMNotifier(client, logger), nil
}

func newFCMNotifier(client messageSender, logger *slog.Logger) *FCMNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &FCMNotifier{client: client, logger: logger}
}

func UserTopic(userID int) string { return "user_" + strconv.Itoa(userID) }

func (n *FCMNotifier) NotifyBooking(ctx context.Context, ad *models.Ad, booking models.Booking) error {
	title := "New booking"
	body := fmt.Sprintf("%s is booked from %s to %s",
		ad.Title, booking.StartDate.Format(models.DateLayout), booking.EndDate.Format(models.DateLayout))

	msg := &messaging.Message{
		Topic: UserTopic(ad.AuthorID),
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"ad_id":      strconv.Itoa(ad.ID),
			"booking_id": strconv.Itoa(booking.ID),
			"start_date": booking.StartDate.Format(models.DateLayout),
			"end_date":   booking.EndDate.Format(models.DateLayout),
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": "10"},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{Title: title, Body: body},
					Sound: "default",
				},
			},
		},
	}

	id, err := n.client.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	n.logger.Info("booking notification sent", "message_id", id, "topic", msg.Topic)
	return nil
}
