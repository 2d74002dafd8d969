/*
Package events provides the per-topic publish/subscribe primitive used to
notify presentation consumers of model changes.

A Dispatcher serves exactly one Topic. Subscribers register a callback
under a string key; keys are unique, so subscribing an existing key swaps
the callback in place without changing delivery order or causing a second
invocation. Unsubscribing an unknown key is a no-op.

	┌──────────── unit.Handler ────────────┐
	│  unit    levels    boards    midi    │   one Dispatcher per Topic
	└───┬────────┬─────────┬─────────┬─────┘
	    │        │         │         │
	    ▼        ▼         ▼         ▼
	 key → cb  key → cb  key → cb  key → cb    registration order

Publish is synchronous: every callback has returned before Publish does.
The subscriber list is copy-on-write, so Publish iterates a snapshot and a
callback may subscribe or unsubscribe (itself included) without skipping or
repeating deliveries; the change applies from the next Publish.

A callback that panics is recovered, logged with its topic and key, and
counted in fxboard_callback_failures_total. Delivery continues with the
next subscriber and the publisher never sees the failure.

There is no queue. Publishing to a topic with no subscribers drops the
payload, and ordering is only defined within a single topic.

	d := events.NewDispatcher[*types.UnitModel](events.TopicLevels)
	d.Subscribe("meter", func(m *types.UnitModel) {
		fmt.Println(m.InputLeft.Level)
	})
	d.Publish(model)
	d.Unsubscribe("meter")
*/
package events
