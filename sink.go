package mtrace

import "os"

// fileSink is the built-in Sink backing a plain output file, used whenever
// Options.Sink is nil and Config.DirectToExternalSink is false. External,
// chunked destinations are expected to supply their own Sink implementation
// (see the Sink interface) — this module only ever constructs the
// file-backed case itself.
type fileSink struct {
	f *os.File
}

func (s *fileSink) WriteFully(data []byte) error {
	_, err := s.f.Write(data)
	return err
}

// WriteChunked on a plain file has no framing to preserve: it writes the
// two parts back to back, equivalent to concatenating them before
// WriteFully.
func (s *fileSink) WriteChunked(tag string, preamble, records []byte) error {
	if _, err := s.f.Write(preamble); err != nil {
		return err
	}
	_, err := s.f.Write(records)
	return err
}

var _ Sink = (*fileSink)(nil)

// openSink resolves Config/Options into the Sink a session will finalize
// to, plus whether Stop should close the underlying *os.File itself. If the
// caller supplied Options.Sink, or asked for DirectToExternalSink, no file
// is opened here (nothing for Stop to close). Opening Config.Filename
// creates and therefore owns the file. Wrapping Config.FD adopts a caller-
// supplied, caller-owned descriptor: the caller opened it and keeps
// responsibility for closing it, so Stop must leave it open.
func openSink(cfg Config, opts Options) (sink Sink, closeOnStop bool, file *os.File, err error) {
	if opts.Sink != nil {
		return opts.Sink, false, nil, nil
	}
	if cfg.DirectToExternalSink {
		return nil, false, nil, NewError("openSink", CodeSinkOpenFailed, "direct-to-external-sink requested but no Sink was supplied")
	}

	if cfg.FD != 0 {
		f := os.NewFile(uintptr(cfg.FD), "mtrace-fd")
		return &fileSink{f: f}, false, f, nil
	}

	f, err := os.Create(cfg.Filename)
	if err != nil {
		return nil, false, nil, err
	}
	return &fileSink{f: f}, true, f, nil
}
