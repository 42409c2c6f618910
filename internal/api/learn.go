package api

import (
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"StockLens/internal/education"
)

func (h *Handler) listTopics(c echo.Context) error {
	topics := h.Library.Topics(h.Collector.Profile().Sections...)
	for i := range topics {
		topics[i].Sections = nil
	}
	return SuccessResponse(c, topics)
}

// getTopic serves a topic only when the active profile includes it.
func (h *Handler) getTopic(c echo.Context) error {
	id := strings.ToLower(c.Param("topic"))
	if !h.Collector.Profile().HasSection(id) {
		return h.fail(c, fmt.Errorf("%w: %q", education.ErrTopicNotFound, id))
	}
	topic, err := h.Library.Topic(id)
	if err != nil {
		return h.fail(c, err)
	}
	return SuccessResponse(c, topic)
}
