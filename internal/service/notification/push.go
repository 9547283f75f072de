package notification

import (
	"fmt"
	"net/url"

	"github.com/quotewatch/quote-watch/internal/service/detector"
	"github.com/quotewatch/quote-watch/internal/service/settings"
)

// FormatPush renders the push message for an event. The broker name is
// shown only when the event concerns another broker's quotes, the
// instrument name is omitted for broker-level events.
func FormatPush(event detector.Event, snap *settings.Snapshot, ownBrokerId int64, webURL string) PushPayload {
	var heading string
	if event.InstrumentId != 0 {
		if inst, ok := snap.Instruments[event.InstrumentId]; ok {
			heading = inst.Name + " "
		}
	}
	if event.BrokerId != ownBrokerId {
		if broker, ok := snap.Brokers[event.BrokerId]; ok {
			heading += broker.Name + " "
		}
	}
	heading += event.StartTime.Format("2006-01-02 15:04:05")

	content := snap.EventTypes[int64(event.Type)]
	if content == "" {
		content = event.Type.String()
	}

	return PushPayload{
		Heading: heading,
		Content: content,
		URL: fmt.Sprintf("%s?%s", webURL, url.Values{
			"r":  {"event/view"},
			"id": {fmt.Sprint(event.DBId)},
		}.Encode()),
		Topic: int64(event.Type),
	}
}
