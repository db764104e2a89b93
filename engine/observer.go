package engine

import (
	"log"
	"sync"
	"time"
)

// Observer receives run lifecycle notifications. Every call is best effort:
// a panicking observer is logged and otherwise ignored.
type Observer interface {
	OnStarted(profile, slot string)
	// OnProgress reports the slot being run, or "" when nothing is.
	OnProgress(slot string)
	OnCompleted()
	OnCancelled()
	OnFailed(reason string)
	OnIdle()
}

func deliver(o Observer, fn func(Observer)) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Observer panicked: %v", r)
		}
	}()
	fn(o)
}

// Funcs adapts optional callbacks to an Observer.
type Funcs struct {
	Started   func(profile, slot string)
	Progress  func(slot string)
	Completed func()
	Cancelled func()
	Failed    func(reason string)
	Idle      func()
}

func (f Funcs) OnStarted(profile, slot string) {
	if f.Started != nil {
		f.Started(profile, slot)
	}
}

func (f Funcs) OnProgress(slot string) {
	if f.Progress != nil {
		f.Progress(slot)
	}
}

func (f Funcs) OnCompleted() {
	if f.Completed != nil {
		f.Completed()
	}
}

func (f Funcs) OnCancelled() {
	if f.Cancelled != nil {
		f.Cancelled()
	}
}

func (f Funcs) OnFailed(reason string) {
	if f.Failed != nil {
		f.Failed(reason)
	}
}

func (f Funcs) OnIdle() {
	if f.Idle != nil {
		f.Idle()
	}
}

// Observers fans every notification out in order. One observer failing does
// not stop the others.
type Observers []Observer

func (obs Observers) each(fn func(Observer)) {
	for _, o := range obs {
		if o != nil {
			deliver(o, fn)
		}
	}
}

func (obs Observers) OnStarted(profile, slot string) {
	obs.each(func(o Observer) { o.OnStarted(profile, slot) })
}

func (obs Observers) OnProgress(slot string) {
	obs.each(func(o Observer) { o.OnProgress(slot) })
}

func (obs Observers) OnCompleted() { obs.each(func(o Observer) { o.OnCompleted() }) }

func (obs Observers) OnCancelled() { obs.each(func(o Observer) { o.OnCancelled() }) }

func (obs Observers) OnFailed(reason string) {
	obs.each(func(o Observer) { o.OnFailed(reason) })
}

func (obs Observers) OnIdle() { obs.each(func(o Observer) { o.OnIdle() }) }

// Marshal returns an observer that hands every notification to post instead
// of calling o directly. Pass fyne.Do to deliver on the UI goroutine, or a
// Mailbox's Post.
func Marshal(post func(func()), o Observer) Observer {
	return marshalled{post: post, o: o}
}

type marshalled struct {
	post func(func())
	o    Observer
}

func (m marshalled) send(fn func(Observer)) {
	m.post(func() { deliver(m.o, fn) })
}

func (m marshalled) OnStarted(profile, slot string) {
	m.send(func(o Observer) { o.OnStarted(profile, slot) })
}

func (m marshalled) OnProgress(slot string) {
	m.send(func(o Observer) { o.OnProgress(slot) })
}

func (m marshalled) OnCompleted() { m.send(func(o Observer) { o.OnCompleted() }) }

func (m marshalled) OnCancelled() { m.send(func(o Observer) { o.OnCancelled() }) }

func (m marshalled) OnFailed(reason string) {
	m.send(func(o Observer) { o.OnFailed(reason) })
}

func (m marshalled) OnIdle() { m.send(func(o Observer) { o.OnIdle() }) }

// Mailbox runs posted functions in order on its own goroutine. A full mailbox
// waits briefly for room and then drops the notification, so the worker is
// never held up by a slow consumer.
type Mailbox struct {
	ch      chan func()
	timeout time.Duration
	done    chan struct{}
	once    sync.Once
}

// NewMailbox starts a mailbox holding up to size pending notifications.
func NewMailbox(size int) *Mailbox {
	m := &Mailbox{
		ch:      make(chan func(), size),
		timeout: 150 * time.Millisecond,
		done:    make(chan struct{}),
	}
	go m.loop()
	return m
}

func (m *Mailbox) loop() {
	defer close(m.done)
	for fn := range m.ch {
		fn()
	}
}

// Post queues fn. It must not be called after Close.
func (m *Mailbox) Post(fn func()) {
	select {
	case m.ch <- fn:
	case <-time.After(m.timeout):
		log.Printf("Mailbox full: dropping notification")
	}
}

// Close delivers what is queued and stops the mailbox.
func (m *Mailbox) Close() {
	m.once.Do(func() { close(m.ch) })
	<-m.done
}
