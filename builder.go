package gzp

import "runtime"

// compressConfig is the validated, resolved configuration shared by
// ParCompress and SyncCompress; CompressBuilder.Build produces one and
// picks the backend based on numThreads.
type compressConfig struct {
	format     Format
	sink       sink
	level      int
	numThreads int
	bufferSize int
	pinAt      int // -1 disables pinning
	rsyncable  bool
}

func (cfg compressConfig) newChunker() inputChunker {
	if cfg.rsyncable {
		return newRsyncableChunker(cfg.bufferSize)
	}
	return newFixedChunker(cfg.bufferSize)
}

// CompressBuilder configures and constructs a Writer, choosing between
// the parallel and synchronous compress backends per §4.6.
type CompressBuilder struct {
	format     Format
	level      int
	numThreads int
	bufferSize int
	pinAt      int
	rsyncable  bool
}

// NewCompressBuilder starts a builder for format with its default
// compression level, a single worker, and the format's default buffer
// size.
func NewCompressBuilder(format Format) *CompressBuilder {
	return &CompressBuilder{
		format:     format,
		level:      defaultLevel,
		numThreads: 1,
		bufferSize: format.DefaultBufferSize(),
		pinAt:      -1,
	}
}

// defaultLevel mirrors flate.DefaultCompression (-1): let the codec
// pick its own balanced default.
const defaultLevel = -1

// Level sets the compression level; format-specific range checking
// happens when the codec itself is constructed.
func (b *CompressBuilder) Level(level int) *CompressBuilder {
	b.level = level
	return b
}

// NumThreads sets the worker count. 0 or 1 routes to the synchronous
// backend.
func (b *CompressBuilder) NumThreads(n int) *CompressBuilder {
	b.numThreads = n
	return b
}

// BufferSize overrides the default chunk size.
func (b *CompressBuilder) BufferSize(n int) *CompressBuilder {
	b.bufferSize = n
	return b
}

// PinAt enables CPU pinning, assigning worker i to CPU pinAt+i. Pass a
// negative value (the default) to disable pinning.
func (b *CompressBuilder) PinAt(cpu int) *CompressBuilder {
	b.pinAt = cpu
	return b
}

// Rsyncable switches the chunker to content-defined chunk boundaries
// (see rsyncableChunker) instead of fixed-size chunks, trading a
// little compression ratio for chunk boundaries that resynchronize
// after small edits to the input.
func (b *CompressBuilder) Rsyncable(enabled bool) *CompressBuilder {
	b.rsyncable = enabled
	return b
}

// Build validates the configuration and returns a Writer over sink.
// num_threads <= 1 returns the synchronous backend; otherwise the
// parallel pipeline is started immediately (workers and the writer
// goroutine are already running when Build returns).
func (b *CompressBuilder) Build(sink sink) (Writer, error) {
	cfg := compressConfig{
		format:     b.format,
		sink:       sink,
		level:      b.level,
		numThreads: b.numThreads,
		bufferSize: b.bufferSize,
		pinAt:      b.pinAt,
		rsyncable:  b.rsyncable,
	}
	if err := validateCompressConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.numThreads <= 1 {
		return newSyncCompress(cfg), nil
	}
	return newParCompress(cfg), nil
}

func validateCompressConfig(cfg compressConfig) error {
	min := cfg.format.MinBufferSize()
	max := cfg.format.MaxBufferSize()
	if cfg.bufferSize < min {
		return newErr(ConfigurationError, "buffer_size below format minimum", nil)
	}
	if max > 0 && cfg.bufferSize > max {
		return newErr(ConfigurationError, "buffer_size above format maximum", nil)
	}
	if cfg.numThreads < 0 {
		return newErr(ConfigurationError, "num_threads must be >= 0", nil)
	}
	if cpus := runtime.NumCPU(); cfg.numThreads > cpus*4 {
		return newErr(ConfigurationError, "num_threads exceeds 4x cpu count", nil)
	}
	if cfg.rsyncable {
		if _, ok := cfg.format.(BlockFormat); ok {
			return newErr(ConfigurationError, "rsyncable is unsupported for independent-block formats", nil)
		}
	}
	return nil
}

// decompressConfig is the validated, resolved configuration shared by
// ParDecompress and SyncDecompress.
type decompressConfig struct {
	format     BlockFormat
	source     source
	numThreads int
	pinAt      int
}

// DecompressBuilder configures and constructs a Reader over a
// BlockFormat-framed byte stream (Mgzip or BGZF).
type DecompressBuilder struct {
	format     BlockFormat
	numThreads int
	pinAt      int
}

// NewDecompressBuilder starts a builder with a single worker.
func NewDecompressBuilder(format BlockFormat) *DecompressBuilder {
	return &DecompressBuilder{format: format, numThreads: 1, pinAt: -1}
}

// NumThreads sets the worker count. 0 or 1 routes to the synchronous
// backend.
func (b *DecompressBuilder) NumThreads(n int) *DecompressBuilder {
	b.numThreads = n
	return b
}

// PinAt enables CPU pinning as CompressBuilder.PinAt does.
func (b *DecompressBuilder) PinAt(cpu int) *DecompressBuilder {
	b.pinAt = cpu
	return b
}

// Build validates the configuration and returns a Reader over source.
func (b *DecompressBuilder) Build(src source) (Reader, error) {
	cfg := decompressConfig{
		format:     b.format,
		source:     src,
		numThreads: b.numThreads,
		pinAt:      b.pinAt,
	}
	if cfg.numThreads < 0 {
		return nil, newErr(ConfigurationError, "num_threads must be >= 0", nil)
	}
	if cpus := runtime.NumCPU(); cfg.numThreads > cpus*4 {
		return nil, newErr(ConfigurationError, "num_threads exceeds 4x cpu count", nil)
	}
	if cfg.numThreads <= 1 {
		return newSyncDecompress(cfg), nil
	}
	return newParDecompress(cfg), nil
}
