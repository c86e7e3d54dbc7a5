// Command gzp is a gzip-alike driver for the gzp package: it exposes
// the library's format/threading/pinning knobs as flags instead of
// hardcoding a single format the way a library-only package would.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/sstadick/gzp"

	"github.com/djherbis/atime"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const version = "1.0"

var (
	flagStdout     = pflag.BoolP("stdout", "c", false, "write on standard output, keep original files unchanged")
	flagDecompress = pflag.BoolP("decompress", "d", false, "decompress")
	flagForce      = pflag.BoolP("force", "f", false, "force overwrite of output file")
	flagHelp       = pflag.BoolP("help", "h", false, "give this help")
	flagKeep       = pflag.BoolP("keep", "k", false, "keep (don't delete) input files")
	flagTest       = pflag.BoolP("test", "t", false, "test compressed file integrity")
	flagVersion    = pflag.BoolP("version", "V", false, "display version number")
	flagRsyncable  = pflag.Bool("rsyncable", false, "make rsync-friendly archive")

	flagFormat  = pflag.StringP("format", "F", "gzip", "codec: gzip, zlib, deflate, snappy, lz4, mgzip, bgzf")
	flagLevel   = pflag.IntP("level", "l", -1, "compression level, -1 for format default")
	flagThreads = pflag.IntP("threads", "p", runtime.NumCPU(), "number of worker threads, 1 for sequential")
	flagBlock   = pflag.Int("block-size", 0, "chunk size in bytes, 0 for format default")
	flagPinAt   = pflag.Int("pin-at", -1, "pin worker i to cpu pin-at+i, -1 to disable")
)

func main() {
	pflag.Parse()
	if *flagHelp {
		usage()
		return
	}
	if *flagVersion {
		fmt.Println("gzp", version)
		return
	}

	files := pflag.Args()
	if len(files) == 0 {
		files = []string{"-"}
	}

	mode := modeCompress
	binname := filepath.Base(os.Args[0])
	if *flagDecompress || strings.Contains(binname, "gunzp") {
		mode = modeDecompress
	}
	if *flagTest {
		mode = modeTest
	}
	if strings.Contains(binname, "zpcat") {
		mode = modeDecompress
		*flagStdout = true
	}

	setSignalHandler()

	code := 0
	for _, fn := range files {
		if !runFile(fn, mode) {
			code = 1
		}
	}
	os.Exit(code)
}

type runMode int

const (
	modeCompress runMode = iota
	modeDecompress
	modeTest
)

var outFn string

func setSignalHandler() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-ch
		if outFn != "" {
			os.Remove(outFn)
		}
		os.Exit(1)
	}()
}

func fatal(args ...interface{}) {
	fmt.Fprint(os.Stderr, "gzp: ")
	fmt.Fprintln(os.Stderr, args...)
}

func lookupFormat(name string) (gzp.Format, error) {
	switch strings.ToLower(name) {
	case "gzip", "gz":
		return gzp.Gzip{}, nil
	case "zlib":
		return gzp.Zlib{}, nil
	case "deflate", "raw":
		return gzp.RawDeflate{}, nil
	case "snappy":
		return gzp.Snappy{}, nil
	case "lz4":
		return gzp.Lz4{}, nil
	case "mgzip":
		return gzp.Mgzip{}, nil
	case "bgzf":
		return gzp.Bgzf{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q", name)
	}
}

func copyStat(w *os.File, f *os.File) {
	fi, err := f.Stat()
	if err != nil {
		return
	}
	w.Chmod(fi.Mode())
	if sys, ok := fi.Sys().(*syscall.Stat_t); ok {
		w.Chown(int(sys.Uid), int(sys.Gid))
		os.Chtimes(w.Name(), atime.Get(fi), fi.ModTime())
	}
}

func runFile(fn string, mode runMode) bool {
	format, err := lookupFormat(*flagFormat)
	if err != nil {
		fatal(err)
		return false
	}

	var f *os.File
	outToStdout := *flagStdout
	if fn == "-" {
		f = os.Stdin
		outToStdout = true
	} else {
		f, err = os.Open(fn)
		if err != nil {
			fatal(err)
			return false
		}
		defer f.Close()
	}

	var w *os.File
	if outToStdout {
		w = os.Stdout
		if mode == modeCompress && term.IsTerminal(int(os.Stdout.Fd())) && !*flagForce {
			fatal("cannot compress to terminal (use -f to force)")
			return false
		}
	} else {
		var dst string
		switch mode {
		case modeCompress:
			dst = fn + ".gzp"
		case modeDecompress:
			ext := filepath.Ext(fn)
			if ext != ".gzp" && ext != ".gz" {
				fatal(fn, "unknown suffix -- ignored")
				return true
			}
			dst = fn[:len(fn)-len(ext)]
		case modeTest:
			dst = os.DevNull
		}
		if !*flagForce {
			if _, err := os.Stat(dst); err == nil {
				fmt.Printf("gzp: %s already exists; overwrite (y or n)? ", dst)
				reader := bufio.NewReader(os.Stdin)
				input, _ := reader.ReadString('\n')
				if len(input) == 0 || input[0] != 'y' {
					fmt.Println("\tnot overwritten")
					return true
				}
			}
		}
		w, err = os.Create(dst)
		if err != nil {
			fatal(err)
			return false
		}
		if mode != modeTest {
			outFn = dst
			defer func() { outFn = "" }()
			defer func() {
				if outFn != "" {
					os.Remove(dst)
				}
			}()
		}
		defer w.Close()
	}

	var src io.Reader
	var dst gzp.Writer

	switch mode {
	case modeCompress:
		cb := gzp.NewCompressBuilder(format).Level(*flagLevel).NumThreads(*flagThreads).PinAt(*flagPinAt).Rsyncable(*flagRsyncable)
		if *flagBlock > 0 {
			cb = cb.BufferSize(*flagBlock)
		}
		dst, err = cb.Build(w)
		src = f
	case modeDecompress, modeTest:
		bf, ok := format.(gzp.BlockFormat)
		if !ok {
			fatal("format", format.Name(), "does not support decompression via this tool")
			return false
		}
		db := gzp.NewDecompressBuilder(bf).NumThreads(*flagThreads).PinAt(*flagPinAt)
		r, derr := db.Build(f)
		if derr != nil {
			fatal(derr)
			return false
		}
		defer r.Close()
		src = r
		dst = &nopWriter{w: w}
	}
	if err != nil {
		fatal(err)
		return false
	}

	if _, err := io.Copy(writerAdapter{dst}, src); err != nil {
		fatal(err)
		return false
	}
	if err := dst.Finish(); err != nil {
		fatal(err)
		return false
	}

	outFn = ""
	if mode != modeTest && !outToStdout {
		copyStat(w, f)
		if !*flagKeep && fn != "-" {
			os.Remove(fn)
		}
	}
	return true
}

// writerAdapter lets io.Copy target a gzp.Writer, whose Write method
// has the same signature as io.Writer but is declared on a named
// interface rather than io.Writer itself.
type writerAdapter struct{ w gzp.Writer }

func (a writerAdapter) Write(p []byte) (int, error) { return a.w.Write(p) }

// nopWriter satisfies gzp.Writer for the decompress path, where bytes
// are simply copied out without a compressing backend.
type nopWriter struct{ w io.Writer }

func (n *nopWriter) Write(p []byte) (int, error) { return n.w.Write(p) }
func (n *nopWriter) Flush() error                 { return nil }
func (n *nopWriter) Finish() error                { return nil }
func (n *nopWriter) Close() error                 { return nil }

func usage() {
	fmt.Println(`Usage: gzp [OPTION]... [FILE]...
Compress or uncompress FILEs (by default, compress FILES in-place).

  -c, --stdout        write on standard output, keep original files unchanged
  -d, --decompress    decompress
  -f, --force         force overwrite of output file
  -h, --help          give this help
  -k, --keep          keep (don't delete) input files
  -t, --test          test compressed file integrity
  -V, --version       display version number
      --rsyncable     make rsync-friendly archive
  -F, --format        codec: gzip, zlib, deflate, snappy, lz4, mgzip, bgzf
  -l, --level         compression level, -1 for format default
  -p, --threads       number of worker threads, 1 for sequential
      --block-size    chunk size in bytes, 0 for format default
      --pin-at        pin worker i to cpu pin-at+i, -1 to disable

With no FILE, or when FILE is -, read standard input.`)
}
