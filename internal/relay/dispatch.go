package relay

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/technosupport/ts-alert-relay/internal/data"
	"github.com/technosupport/ts-alert-relay/internal/zones"
)

const (
	ChannelWhatsApp = "whatsapp"
	ChannelEmail    = "email"
)

// defaultDestinations is used for alerts with no zone context, i.e. offline
// alerts for cameras that map to no configured zone.
var defaultDestinations = []string{ChannelWhatsApp, ChannelEmail}

// dispatchAlert tries whatsapp first when it is among the zone's
// destinations, then falls back to email. Every attempt is audited,
// successful or not. Email is only consulted after whatsapp did not
// succeed (absent, unconfigured or failed); a whatsapp success ends the
// dispatch. The returned error is reserved for store failures, which are
// fatal for the request; channel failures come back as (false, reason).
func (r *Relay) dispatchAlert(ctx context.Context, eventID *string, zone *zones.Zone, message AlertMessage) (bool, string, error) {
	payload := message.payloadMap()
	payloadJSON, _ := json.Marshal(message)
	text := message.RenderText()

	destinations := defaultDestinations
	if zone != nil {
		destinations = zone.AlertDestinations
	}

	whatsappError := ""

	if containsDestination(destinations, ChannelWhatsApp) && r.whatsapp != nil {
		sendErr := r.whatsapp.Send(ctx, text, payload)
		status := data.AlertStatusSuccess
		if sendErr != nil {
			status = data.AlertStatusFailed
			whatsappError = sendErr.Error()
		}
		if err := r.store.SaveAlert(ctx, &data.AlertRecord{
			EventID:     eventID,
			Channel:     ChannelWhatsApp,
			Destination: "webhook",
			Status:      status,
			Error:       whatsappError,
			Payload:     payloadJSON,
		}); err != nil {
			return false, "", err
		}
		r.recorder.AlertSent(ChannelWhatsApp, status)
		if sendErr == nil {
			return true, "", nil
		}
	}

	if r.email != nil && len(r.cfg.EmailRecipients) > 0 {
		sendErr := r.email.Send(ctx, r.cfg.EmailRecipients, message.EmailSubject(), text)
		status := data.AlertStatusSuccess
		emailError := ""
		if sendErr != nil {
			status = data.AlertStatusFailed
			emailError = sendErr.Error()
		}
		if err := r.store.SaveAlert(ctx, &data.AlertRecord{
			EventID:     eventID,
			Channel:     ChannelEmail,
			Destination: strings.Join(r.cfg.EmailRecipients, ","),
			Status:      status,
			Error:       emailError,
			Payload:     payloadJSON,
		}); err != nil {
			return false, "", err
		}
		r.recorder.AlertSent(ChannelEmail, status)
		if sendErr == nil {
			return true, "", nil
		}
		if emailError != "" {
			return false, emailError, nil
		}
		return false, whatsappError, nil
	}

	if whatsappError != "" {
		return false, whatsappError, nil
	}
	return false, ReasonNoDeliveryChannels, nil
}

func containsDestination(destinations []string, name string) bool {
	for _, d := range destinations {
		if d == name {
			return true
		}
	}
	return false
}
