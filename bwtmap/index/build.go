// Copyright © 2023-2024 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package index

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shenwei356/BWTMap/bwtmap/index/bwt"
	"github.com/shenwei356/BWTMap/bwtmap/index/twobit"
	"github.com/shenwei356/BWTMap/bwtmap/util"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// BuildOptions contains the options for building an index.
type BuildOptions struct {
	Verbose bool // show progress bar

	SAInterval  int   // sampling interval of suffix arrays
	OccInterval int   // distance between occurrence checkpoints
	KmerCacheK  int   // k-mer size of the interval cache, 0 for no cache
	RandSeed    int64 // seed for replacing ambiguous bases
}

// DefaultBuildOptions is the default BuildOptions.
var DefaultBuildOptions = BuildOptions{
	SAInterval:  32,
	OccInterval: 64,
	KmerCacheK:  10,
	RandSeed:    11,
}

// CheckBuildOptions checks the options.
func CheckBuildOptions(opt *BuildOptions) error {
	if opt.SAInterval < 1 || opt.SAInterval > 1<<10 {
		return fmt.Errorf("invalid sampling interval of suffix arrays: %d, valid range: [1, 1024]", opt.SAInterval)
	}
	if opt.OccInterval < 1 || opt.OccInterval > 1<<10 {
		return fmt.Errorf("invalid occurrence checkpoint interval: %d, valid range: [1, 1024]", opt.OccInterval)
	}
	if opt.KmerCacheK < 0 || opt.KmerCacheK > bwt.MaxCacheK {
		return fmt.Errorf("invalid k-mer size of cache: %d, valid range: [0, %d], 0 for no cache", opt.KmerCacheK, bwt.MaxCacheK)
	}
	return nil
}

// Build reads reference sequences from FASTA/Q files and writes the index
// files with the prefix. Forward and reverse indexes are built concurrently.
func Build(prefix string, files []string, opt *BuildOptions) error {
	if opt == nil {
		opt = &DefaultBuildOptions
	}
	if err := CheckBuildOptions(opt); err != nil {
		return err
	}
	if len(files) == 0 {
		return ErrNoInputFiles
	}

	codes, info, holes, err := readReference(files, opt)
	if err != nil {
		return err
	}
	if len(codes) == 0 {
		return ErrEmptyReference
	}

	// forward and reverse indexes
	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = buildBWT(codes, prefix+ExtBWT, prefix+ExtSA, opt)
	}()
	go func() {
		defer wg.Done()
		errs[1] = buildBWT(reversed(codes), prefix+ExtRevBWT, prefix+ExtRevSA, opt)
	}()

	if err = twobit.Write(prefix+ExtPac, codes); err != nil {
		return errors.Wrap(err, "write packed reference")
	}
	if err = writeInfo(prefix+ExtAnn, info); err != nil {
		return err
	}
	if err = writeHoles(prefix+ExtAmb, holes); err != nil {
		return errors.Wrap(err, "write ambiguous bases")
	}

	wg.Wait()
	for _, err = range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func reversed(codes []byte) []byte {
	return util.ReverseBytes(codes)
}

func buildBWT(codes []byte, fileBWT, fileSA string, opt *BuildOptions) error {
	b, sa, err := bwt.Build(codes, opt.OccInterval)
	if err != nil {
		return err
	}

	s, err := bwt.NewSuffixArray(b, sa, opt.SAInterval)
	if err != nil {
		return err
	}

	if _, err = b.WriteToFile(fileBWT); err != nil {
		return errors.Wrapf(err, "write %s", fileBWT)
	}
	if _, err = s.WriteToFile(fileSA); err != nil {
		return errors.Wrapf(err, "write %s", fileSA)
	}
	return nil
}

// readReference concatenates all sequences as 2-bit codes.
func readReference(files []string, opt *BuildOptions) ([]byte, *Info, []Hole, error) {
	// process bar
	var pbs *mpb.Progress
	var bar *mpb.Bar
	if opt.Verbose {
		pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
		bar = pbs.AddBar(int64(len(files)),
			mpb.PrependDecorators(
				decor.Name("processed files: ", decor.WC{W: len("processed files: "), C: decor.DindentRight}),
				decor.Name("", decor.WCSyncSpaceR),
				decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(
				decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
				decor.EwmaETA(decor.ET_STYLE_GO, 10),
				decor.OnComplete(decor.Name(""), ". done"),
			),
		)
	}

	info := &Info{
		MainVersion:  MainVersion,
		MinorVersion: MinorVersion,
		SAInterval:   opt.SAInterval,
		OccInterval:  opt.OccInterval,
		KmerCacheK:   opt.KmerCacheK,
		RandSeed:     opt.RandSeed,
		InputFiles:   files,
		Contigs:      make([]Contig, 0, 128),
	}
	recorder := &holeRecorder{holes: make([]Hole, 0, 128), seed: uint64(opt.RandSeed)}
	codes := make([]byte, 0, 1<<20)

	var record *fastx.Record
	var c int8
	for _, file := range files {
		startTime := time.Now()

		fastxReader, err := fastx.NewReader(nil, file, "")
		if err != nil {
			return nil, nil, nil, errors.Wrapf(err, "read seq file: %s", file)
		}

		for {
			record, err = fastxReader.Read()
			if err != nil {
				if err == io.EOF {
					break
				}
				fastxReader.Close()
				return nil, nil, nil, errors.Wrapf(err, "read seq file: %s", file)
			}
			if len(record.Seq.Seq) == 0 {
				continue
			}

			info.Contigs = append(info.Contigs, Contig{
				Name:   string(record.ID),
				Offset: len(codes),
				Length: len(record.Seq.Seq),
			})
			for _, s := range record.Seq.Seq {
				if c = base2code[s]; c >= 0 {
					codes = append(codes, byte(c))
				} else {
					codes = append(codes, recorder.add(len(codes), s))
				}
			}
		}
		fastxReader.Close()

		if opt.Verbose {
			bar.EwmaIncrBy(1, time.Since(startTime))
		}
	}

	if opt.Verbose {
		pbs.Wait()
	}

	info.Length = len(codes)
	return codes, info, recorder.holes, nil
}
