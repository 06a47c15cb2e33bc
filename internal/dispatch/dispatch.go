package dispatch

// Sink receives recognized utterance text, one string per call. Errors are
// the sink's own problem to describe; the pipeline logs them and moves on.
type Sink interface {
	Dispatch(text string) error
}

// Func adapts a plain function to a Sink.
type Func func(string) error

func (f Func) Dispatch(text string) error { return f(text) }

// Tee fans one utterance out to several sinks. The first error is returned
// after every sink has been offered the text.
type Tee []Sink

func (t Tee) Dispatch(text string) error {
	var first error
	for _, s := range t {
		if err := s.Dispatch(text); err != nil && first == nil {
			first = err
		}
	}
	return first
}
