package gzp

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// Reader is the single polymorphic interface both decompress backends
// satisfy. Close cancels any still-running worker goroutines and blocks
// until they have exited; callers that read a ParDecompress to EOF may
// still call Close afterward, and it returns nil.
type Reader interface {
	io.Reader
	io.Closer
}

// ParDecompress is the parallel block decompressor described in §4.5:
// a reader goroutine that slices the source into framed blocks using
// each BlockFormat's header/BlockSize contract, a worker pool that
// decodes blocks concurrently, and an emitter goroutine that
// reassembles decoded bytes in source order for Read.
type ParDecompress struct {
	format BlockFormat
	source source

	dispatchCh chan chunk
	resultCh   chan result
	outCh      chan []byte
	cancelCh   chan struct{}

	wg         sync.WaitGroup
	cancelOnce sync.Once

	leftover []byte

	mu        sync.Mutex
	terminal  error // nil = clean EOF, otherwise the error Read should surface once outCh drains
	sawSealed bool
}

func newParDecompress(cfg decompressConfig) *ParDecompress {
	slack := cfg.numThreads
	d := &ParDecompress{
		format:     cfg.format,
		source:     cfg.source,
		dispatchCh: make(chan chunk, cfg.numThreads+slack),
		resultCh:   make(chan result, cfg.numThreads+slack),
		outCh:      make(chan []byte, cfg.numThreads+slack),
		cancelCh:   make(chan struct{}),
	}

	go d.readLoop()

	d.wg.Add(cfg.numThreads)
	for i := 0; i < cfg.numThreads; i++ {
		pinAt := -1
		if cfg.pinAt >= 0 {
			pinAt = cfg.pinAt + i
		}
		go d.worker(pinAt)
	}
	go func() {
		d.wg.Wait()
		close(d.resultCh)
	}()
	go d.emitLoop()

	return d
}

// setTerminal records the error Read should surface once all already
// decoded output has drained, unless one is already set: the first
// terminal condition observed wins, same latching discipline as the
// compress side.
func (d *ParDecompress) setTerminal(err error) {
	d.mu.Lock()
	if d.terminal == nil {
		d.terminal = err
	}
	d.mu.Unlock()
}

func (d *ParDecompress) readLoop() {
	defer close(d.dispatchCh)
	headerSize := d.format.HeaderSize()
	_, isBgzf := d.format.(Bgzf)
	var idx int64
	for {
		select {
		case <-d.cancelCh:
			return
		default:
		}
		hdr := make([]byte, headerSize)
		n, err := io.ReadFull(d.source, hdr)
		if err != nil && n == 0 {
			if err != io.EOF {
				d.setTerminal(newErr(SourceError, "read block header", err))
			} else if isBgzf && !d.sawSealed {
				d.setTerminal(newErr(MissingEofBlock, "stream ended without BGZF EOF member", nil))
			}
			return
		}
		if err != nil {
			d.setTerminal(newFormatErr(FramingError, d.format.Name(), "truncated block header", err))
			return
		}
		if err := d.format.CheckHeader(hdr); err != nil {
			d.setTerminal(err)
			return
		}
		total, err := d.format.BlockSize(hdr)
		if err != nil {
			d.setTerminal(err)
			return
		}
		if total < headerSize {
			d.setTerminal(newFormatErr(FramingError, d.format.Name(), "block size smaller than header", nil))
			return
		}
		rest := make([]byte, total-headerSize)
		if _, err := io.ReadFull(d.source, rest); err != nil {
			d.setTerminal(newFormatErr(FramingError, d.format.Name(), "truncated block body", err))
			return
		}

		if isBgzf {
			full := append(append([]byte{}, hdr...), rest...)
			d.sawSealed = bytes.Equal(full, bgzfEOF)
			if d.sawSealed {
				// The EOF member carries no payload worth decoding; stop
				// here rather than dispatching it as a unit of work.
				return
			}
		}

		select {
		case d.dispatchCh <- chunk{index: idx, data: rest}:
		case <-d.cancelCh:
			return
		}
		idx++
	}
}

func (d *ParDecompress) worker(pinAt int) {
	defer d.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			d.setTerminal(newFormatErr(Panicked, d.format.Name(), fmt.Sprintf("worker recovered from panic: %v", r), nil))
			// A panicking worker leaves the dispatch/result channels one
			// consumer/producer short; cancel the rest of the pipeline
			// rather than risk readLoop or a sibling worker blocking on a
			// channel nothing will ever drain again.
			d.cancel()
		}
	}()
	if pinAt >= 0 {
		_ = pinCurrentGoroutine(pinAt)
	}
	dec := d.format.NewDecoder()
	for {
		select {
		case ch, ok := <-d.dispatchCh:
			if !ok {
				return
			}
			dec.Reset()
			out, err := dec.Decode(ch.data)
			select {
			case d.resultCh <- result{index: ch.index, data: out, err: err}:
			case <-d.cancelCh:
				return
			}
		case <-d.cancelCh:
			return
		}
	}
}

func (d *ParDecompress) emitLoop() {
	defer close(d.outCh)
	pending := make(map[int64][]byte)
	pendingErr := make(map[int64]error)
	var nextExpected int64
	failed := false
	cancelled := false

	for res := range d.resultCh {
		if res.err != nil {
			pendingErr[res.index] = res.err
		} else {
			pending[res.index] = res.data
		}
		for {
			data, hasData := pending[nextExpected]
			encErr, hasErr := pendingErr[nextExpected]
			if !hasData && !hasErr {
				break
			}
			delete(pending, nextExpected)
			delete(pendingErr, nextExpected)
			nextExpected++
			if failed || cancelled {
				continue
			}
			if encErr != nil {
				d.setTerminal(encErr)
				failed = true
			} else if len(data) > 0 {
				select {
				case d.outCh <- data:
				case <-d.cancelCh:
					cancelled = true
				}
			}
		}
	}
}

// cancel unblocks readLoop, every worker, and emitLoop so they exit
// even if the caller stops draining outCh before EOF.
func (d *ParDecompress) cancel() {
	d.cancelOnce.Do(func() { close(d.cancelCh) })
}

// Close cancels the pipeline and waits for the worker pool and emitLoop
// to exit, mirroring ParCompress's cancelCh teardown. readLoop sees the
// same cancellation and exits at its next check, but Close does not
// wait for it. Close always returns nil: an error already latched for
// Read is not raised again here. Reading a ParDecompress to EOF and
// then calling Close is a no-op beyond that wait.
func (d *ParDecompress) Close() error {
	d.cancel()
	for range d.outCh {
	}
	return nil
}

func (d *ParDecompress) Read(p []byte) (int, error) {
	for len(d.leftover) == 0 {
		data, ok := <-d.outCh
		if !ok {
			d.mu.Lock()
			term := d.terminal
			d.mu.Unlock()
			if term != nil {
				return 0, term
			}
			return 0, io.EOF
		}
		d.leftover = data
	}
	n := copy(p, d.leftover)
	d.leftover = d.leftover[n:]
	return n, nil
}
