package gzp

// SyncCompress implements the same Writer contract as ParCompress but
// runs entirely on the caller's goroutine: one codec, one chunker, no
// worker pool. Per §4.4 this is the backend NumThreads <= 1 selects,
// and it produces byte-identical output to the parallel backend for
// the same input and buffer_size.
type SyncCompress struct {
	format Format
	sink   sink

	chunker  inputChunker
	enc      Encoder
	prevTail []byte

	err      error
	finished bool
}

func newSyncCompress(cfg compressConfig) *SyncCompress {
	enc, err := cfg.format.NewEncoder(cfg.level)
	c := &SyncCompress{
		format:  cfg.format,
		sink:    cfg.sink,
		chunker: cfg.newChunker(),
		enc:     enc,
	}
	if err != nil {
		c.err = newFormatErr(CodecError, cfg.format.Name(), "create encoder", err)
	}
	return c
}

func (c *SyncCompress) checkOpen() error {
	if c.err != nil {
		return c.err
	}
	if c.finished {
		return errAfterFinish
	}
	return nil
}

func (c *SyncCompress) encodeAndWrite(data []byte, last bool) {
	if c.err != nil {
		return
	}
	var dict []byte
	if c.format.NeedsDict() {
		dict = c.prevTail
		c.prevTail = dictTail(data)
	}
	c.enc.Reset()
	block, err := c.enc.Encode(nil, data, dict, last)
	if err != nil {
		c.err = newFormatErr(CodecError, c.format.Name(), "encode chunk", err)
		return
	}
	if _, werr := c.sink.Write(block); werr != nil {
		c.err = newErr(SinkError, "write chunk", werr)
	}
}

func (c *SyncCompress) Write(p []byte) (int, error) {
	if err := c.checkOpen(); err != nil {
		return 0, err
	}
	for _, sealed := range c.chunker.write(p) {
		c.encodeAndWrite(sealed, false)
		if c.err != nil {
			return len(p), c.err
		}
	}
	return len(p), nil
}

func (c *SyncCompress) flushTo(last bool) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if rest := c.chunker.drain(); len(rest) > 0 {
		c.encodeAndWrite(rest, last)
	}
	return c.err
}

func (c *SyncCompress) Flush() error {
	return c.flushTo(false)
}

func (c *SyncCompress) Finish() error {
	if c.finished {
		return c.err
	}
	err := c.flushTo(true)
	c.finished = true
	if err != nil {
		return err
	}
	if footer := c.format.Footer(); footer != nil {
		if _, werr := c.sink.Write(footer); werr != nil {
			c.err = newErr(SinkError, "write footer", werr)
		}
	}
	return c.err
}

func (c *SyncCompress) Close() error {
	_ = c.Finish()
	return nil
}
