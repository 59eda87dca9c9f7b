package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/zoobzio/capitan"

	"fabflow/internal/signals"
)

// PlanEvent is one planning event on the SSE feed
type PlanEvent struct {
	FlowID    string                 `json:"flow_id"`
	Event     string                 `json:"event"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// sseClient couples a delivery channel with an optional flow filter
type sseClient struct {
	events chan PlanEvent
	flowID string // empty matches every flow
}

// EventHub fans planning signals out to SSE subscribers. Hooks are installed
// on construction, so every Plan call in the process feeds connected clients.
type EventHub struct {
	clients    map[chan PlanEvent]string
	clientsMu  sync.RWMutex
	register   chan sseClient
	unregister chan sseClient
	broadcast  chan PlanEvent
	listeners  []*capitan.Listener
}

// NewEventHub creates the hub and hooks the planning signals
func NewEventHub() *EventHub {
	hub := &EventHub{
		clients:    make(map[chan PlanEvent]string),
		register:   make(chan sseClient, 10),
		unregister: make(chan sseClient, 10),
		broadcast:  make(chan PlanEvent, 100),
	}

	hub.listeners = []*capitan.Listener{
		capitan.Hook(signals.FlowStarted, hub.forward("flow_started")),
		capitan.Hook(signals.FlowCompleted, hub.forward("flow_completed")),
		capitan.Hook(signals.FlowFailed, hub.forward("flow_failed")),
		capitan.Hook(signals.StepClassified, hub.forward("step_classified")),
		capitan.Hook(signals.ToolSelected, hub.forward("tool_selected")),
		capitan.Hook(signals.StepOptimized, hub.forward("step_optimized")),
		capitan.Hook(signals.StepEmitted, hub.forward("step_emitted")),
		capitan.Hook(signals.StepSkipped, hub.forward("step_skipped")),
		capitan.Hook(signals.MaskRequested, hub.forward("mask_requested")),
		capitan.Hook(signals.MaskResolved, hub.forward("mask_resolved")),
	}

	go hub.run()
	return hub
}

// Close releases the capitan hooks. Connected clients drain and disconnect
// on their own.
func (h *EventHub) Close() {
	for _, l := range h.listeners {
		l.Close()
	}
	h.listeners = nil
}

// run processes hub registrations and fan-out
func (h *EventHub) run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMu.Lock()
			h.clients[client.events] = client.flowID
			h.clientsMu.Unlock()

		case client := <-h.unregister:
			h.clientsMu.Lock()
			if _, exists := h.clients[client.events]; exists {
				delete(h.clients, client.events)
				close(client.events)
			}
			h.clientsMu.Unlock()

		case event := <-h.broadcast:
			h.clientsMu.RLock()
			for ch, filter := range h.clients {
				if filter != "" && filter != event.FlowID {
					continue
				}
				select {
				case ch <- event:
				default:
					// client buffer full, drop
				}
			}
			h.clientsMu.RUnlock()
		}
	}
}

// Broadcast queues an event for fan-out. Planning never blocks on slow
// subscribers.
func (h *EventHub) Broadcast(event PlanEvent) {
	select {
	case h.broadcast <- event:
	default:
		log.Printf("[SSE] Broadcast queue full, dropping event %s", event.Event)
	}
}

// HandleSSE streams planning events as Server-Sent Events. An optional
// flow_id query parameter narrows the feed to one flow.
func (h *EventHub) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "sse_unsupported", "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := sseClient{
		events: make(chan PlanEvent, 16),
		flowID: r.URL.Query().Get("flow_id"),
	}
	h.register <- client
	defer func() { h.unregister <- client }()

	flusher.Flush()

	ctx := r.Context()
	ping := time.NewTicker(30 * time.Second)
	defer ping.Stop()

	for {
		select {
		case event, open := <-client.events:
			if !open {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				log.Printf("[SSE] Failed to marshal event: %v", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Event, payload)
			flusher.Flush()

		case <-ping.C:
			fmt.Fprint(w, "event: ping\ndata: {\"status\":\"alive\"}\n\n")
			flusher.Flush()

		case <-ctx.Done():
			return
		}
	}
}

// forward adapts one signal hook onto the hub broadcast
func (h *EventHub) forward(label string) func(context.Context, *capitan.Event) {
	return func(_ context.Context, e *capitan.Event) {
		h.Broadcast(planEventFrom(label, e))
	}
}

// planEventFrom flattens a capitan event into the SSE wire shape. Only keys
// present on the event land in Data.
func planEventFrom(label string, e *capitan.Event) PlanEvent {
	data := make(map[string]interface{})

	flowID, _ := signals.FieldFlowID.From(e)

	if v, ok := signals.FieldWaferSize.From(e); ok {
		data[signals.FieldWaferSize.Name()] = v
	}
	if v, ok := signals.FieldDescriptors.From(e); ok {
		data[signals.FieldDescriptors.Name()] = v
	}
	if v, ok := signals.FieldOrderIndex.From(e); ok {
		data[signals.FieldOrderIndex.Name()] = v
	}
	if v, ok := signals.FieldCategory.From(e); ok {
		data[signals.FieldCategory.Name()] = v
	}
	if v, ok := signals.FieldSubType.From(e); ok {
		data[signals.FieldSubType.Name()] = v
	}
	if v, ok := signals.FieldToolID.From(e); ok {
		data[signals.FieldToolID.Name()] = v
	}
	if v, ok := signals.FieldModelRef.From(e); ok {
		data[signals.FieldModelRef.Name()] = v
	}
	if v, ok := signals.FieldTarget.From(e); ok {
		data[signals.FieldTarget.Name()] = v
	}
	if v, ok := signals.FieldAchieved.From(e); ok {
		data[signals.FieldAchieved.Name()] = v
	}
	if v, ok := signals.FieldIterations.From(e); ok {
		data[signals.FieldIterations.Name()] = v
	}
	if v, ok := signals.FieldSearchMode.From(e); ok {
		data[signals.FieldSearchMode.Name()] = v
	}
	if v, ok := signals.FieldStage.From(e); ok {
		data[signals.FieldStage.Name()] = v
	}
	if v, ok := signals.FieldReason.From(e); ok {
		data[signals.FieldReason.Name()] = v
	}
	if v, ok := signals.FieldEmitted.From(e); ok {
		data[signals.FieldEmitted.Name()] = v
	}
	if v, ok := signals.FieldSkipped.From(e); ok {
		data[signals.FieldSkipped.Name()] = v
	}
	if v, ok := signals.FieldLayoutRef.From(e); ok {
		data[signals.FieldLayoutRef.Name()] = v
	}
	if v, ok := signals.FieldMaskPath.From(e); ok {
		data[signals.FieldMaskPath.Name()] = v
	}
	if v, ok := signals.FieldPlanDuration.From(e); ok {
		data[signals.FieldPlanDuration.Name()] = v.String()
	}
	if v, ok := signals.FieldError.From(e); ok && v != nil {
		data[signals.FieldError.Name()] = v.Error()
	}

	return PlanEvent{
		FlowID:    flowID,
		Event:     label,
		Data:      data,
		Timestamp: time.Now(),
	}
}
