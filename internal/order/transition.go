package order

import (
	"github.com/yanun0323/errors"

	"main/internal/model/enum"
	"main/pkg/exception"
)

type transitionKey struct {
	status enum.OrderStatus
	event  enum.OrderEventKind
}

// transitions is the legal (status, event) -> status table. Pairs absent
// from the table are invalid transitions.
var transitions = map[transitionKey]enum.OrderStatus{
	{enum.OrderStatusInitialized, enum.OrderEventDenied}:    enum.OrderStatusDenied,
	{enum.OrderStatusInitialized, enum.OrderEventEmulated}:  enum.OrderStatusEmulated,
	{enum.OrderStatusInitialized, enum.OrderEventReleased}:  enum.OrderStatusReleased,
	{enum.OrderStatusInitialized, enum.OrderEventSubmitted}: enum.OrderStatusSubmitted,
	// External orders may report states without a local submit.
	{enum.OrderStatusInitialized, enum.OrderEventRejected}:  enum.OrderStatusRejected,
	{enum.OrderStatusInitialized, enum.OrderEventAccepted}:  enum.OrderStatusAccepted,
	{enum.OrderStatusInitialized, enum.OrderEventCanceled}:  enum.OrderStatusCanceled,
	{enum.OrderStatusInitialized, enum.OrderEventExpired}:   enum.OrderStatusExpired,
	{enum.OrderStatusInitialized, enum.OrderEventTriggered}: enum.OrderStatusTriggered,

	{enum.OrderStatusEmulated, enum.OrderEventCanceled}: enum.OrderStatusCanceled,
	{enum.OrderStatusEmulated, enum.OrderEventExpired}:  enum.OrderStatusExpired,
	{enum.OrderStatusEmulated, enum.OrderEventReleased}: enum.OrderStatusReleased,

	{enum.OrderStatusReleased, enum.OrderEventSubmitted}: enum.OrderStatusSubmitted,
	{enum.OrderStatusReleased, enum.OrderEventDenied}:    enum.OrderStatusDenied,
	{enum.OrderStatusReleased, enum.OrderEventCanceled}:  enum.OrderStatusCanceled,

	{enum.OrderStatusSubmitted, enum.OrderEventPendingUpdate}: enum.OrderStatusPendingUpdate,
	{enum.OrderStatusSubmitted, enum.OrderEventPendingCancel}: enum.OrderStatusPendingCancel,
	{enum.OrderStatusSubmitted, enum.OrderEventRejected}:      enum.OrderStatusRejected,
	// FOK and IOC may cancel straight from submitted.
	{enum.OrderStatusSubmitted, enum.OrderEventCanceled}: enum.OrderStatusCanceled,
	{enum.OrderStatusSubmitted, enum.OrderEventAccepted}: enum.OrderStatusAccepted,
	{enum.OrderStatusSubmitted, enum.OrderEventFilled}:   enum.OrderStatusFilled,
	{enum.OrderStatusSubmitted, enum.OrderEventUpdated}:  enum.OrderStatusSubmitted,

	{enum.OrderStatusAccepted, enum.OrderEventRejected}:      enum.OrderStatusRejected,
	{enum.OrderStatusAccepted, enum.OrderEventPendingUpdate}: enum.OrderStatusPendingUpdate,
	{enum.OrderStatusAccepted, enum.OrderEventPendingCancel}: enum.OrderStatusPendingCancel,
	{enum.OrderStatusAccepted, enum.OrderEventCanceled}:      enum.OrderStatusCanceled,
	{enum.OrderStatusAccepted, enum.OrderEventTriggered}:     enum.OrderStatusTriggered,
	{enum.OrderStatusAccepted, enum.OrderEventExpired}:       enum.OrderStatusExpired,
	{enum.OrderStatusAccepted, enum.OrderEventFilled}:        enum.OrderStatusFilled,
	{enum.OrderStatusAccepted, enum.OrderEventUpdated}:       enum.OrderStatusAccepted,

	// A fill can race a cancel acknowledgement.
	{enum.OrderStatusCanceled, enum.OrderEventFilled}: enum.OrderStatusFilled,

	{enum.OrderStatusPendingUpdate, enum.OrderEventRejected}:      enum.OrderStatusRejected,
	{enum.OrderStatusPendingUpdate, enum.OrderEventAccepted}:      enum.OrderStatusAccepted,
	{enum.OrderStatusPendingUpdate, enum.OrderEventCanceled}:      enum.OrderStatusCanceled,
	{enum.OrderStatusPendingUpdate, enum.OrderEventExpired}:       enum.OrderStatusExpired,
	{enum.OrderStatusPendingUpdate, enum.OrderEventTriggered}:     enum.OrderStatusTriggered,
	{enum.OrderStatusPendingUpdate, enum.OrderEventPendingUpdate}: enum.OrderStatusPendingUpdate,
	{enum.OrderStatusPendingUpdate, enum.OrderEventPendingCancel}: enum.OrderStatusPendingCancel,
	{enum.OrderStatusPendingUpdate, enum.OrderEventFilled}:        enum.OrderStatusFilled,

	{enum.OrderStatusPendingCancel, enum.OrderEventRejected}:      enum.OrderStatusRejected,
	{enum.OrderStatusPendingCancel, enum.OrderEventPendingCancel}: enum.OrderStatusPendingCancel,
	{enum.OrderStatusPendingCancel, enum.OrderEventCanceled}:      enum.OrderStatusCanceled,
	{enum.OrderStatusPendingCancel, enum.OrderEventExpired}:       enum.OrderStatusExpired,
	// A failed cancel request falls back to accepted.
	{enum.OrderStatusPendingCancel, enum.OrderEventAccepted}: enum.OrderStatusAccepted,
	{enum.OrderStatusPendingCancel, enum.OrderEventFilled}:   enum.OrderStatusFilled,

	{enum.OrderStatusTriggered, enum.OrderEventRejected}:      enum.OrderStatusRejected,
	{enum.OrderStatusTriggered, enum.OrderEventPendingUpdate}: enum.OrderStatusPendingUpdate,
	{enum.OrderStatusTriggered, enum.OrderEventPendingCancel}: enum.OrderStatusPendingCancel,
	{enum.OrderStatusTriggered, enum.OrderEventCanceled}:      enum.OrderStatusCanceled,
	{enum.OrderStatusTriggered, enum.OrderEventExpired}:       enum.OrderStatusExpired,
	{enum.OrderStatusTriggered, enum.OrderEventFilled}:        enum.OrderStatusFilled,

	{enum.OrderStatusPartiallyFilled, enum.OrderEventPendingUpdate}: enum.OrderStatusPendingUpdate,
	{enum.OrderStatusPartiallyFilled, enum.OrderEventPendingCancel}: enum.OrderStatusPendingCancel,
	{enum.OrderStatusPartiallyFilled, enum.OrderEventCanceled}:      enum.OrderStatusCanceled,
	{enum.OrderStatusPartiallyFilled, enum.OrderEventExpired}:       enum.OrderStatusExpired,
	{enum.OrderStatusPartiallyFilled, enum.OrderEventFilled}:        enum.OrderStatusFilled,
	{enum.OrderStatusPartiallyFilled, enum.OrderEventAccepted}:      enum.OrderStatusAccepted,
}

// Transition returns the next status for the given event kind, or
// ErrInvalidStateTransition when the pair is not legal.
func Transition(status enum.OrderStatus, kind enum.OrderEventKind) (enum.OrderStatus, error) {
	next, ok := transitions[transitionKey{status, kind}]
	if !ok {
		return status, errors.Wrapf(exception.ErrInvalidStateTransition,
			"%s -> %s", status, kind)
	}
	return next, nil
}
