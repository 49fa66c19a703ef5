package stream

// Info identifies a stream to an Observer.
type Info struct {
	ID         string
	Name       string
	ObjectMode bool
}

// Observer receives telemetry callbacks from a Transform. Implementations
// must be safe for concurrent use: chunk callbacks arrive from writer and
// handler goroutines, event callbacks from the loop.
type Observer interface {
	StreamStarted(info Info)
	ChunkWritten(info Info, size int)
	ChunkPushed(info Info, size int)
	EventEmitted(info Info, ev Event, err error)
}

// Observers fans callbacks out to every non-nil observer.
func Observers(obs ...Observer) Observer {
	list := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			list = append(list, o)
		}
	}
	return list
}

type multiObserver []Observer

func (m multiObserver) StreamStarted(info Info) {
	for _, o := range m {
		o.StreamStarted(info)
	}
}

func (m multiObserver) ChunkWritten(info Info, size int) {
	for _, o := range m {
		o.ChunkWritten(info, size)
	}
}

func (m multiObserver) ChunkPushed(info Info, size int) {
	for _, o := range m {
		o.ChunkPushed(info, size)
	}
}

func (m multiObserver) EventEmitted(info Info, ev Event, err error) {
	for _, o := range m {
		o.EventEmitted(info, ev, err)
	}
}
