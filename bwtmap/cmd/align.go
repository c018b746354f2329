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

package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/shenwei356/BWTMap/bwtmap/align"
	"github.com/shenwei356/BWTMap/bwtmap/index"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var alignCmd = &cobra.Command{
	Use:   "align",
	Short: "Align reads against an index with mismatches",
	Long: `Align reads against an index with mismatches

Attention:
  1. Input should be (gzipped) FASTA or FASTQ records from files or stdin.
  2. Only the best alignment of each read is reported, searching both strands.
     Reads without alignments within the limits are not outputted.
  3. Alignments crossing two reference sequences are discarded.
  4. The order of reads in output is the same as the input.

Algorithm:
  Reads are aligned with a best-first search over the BWT of the reference,
  in which partial alignments with lower penalty scores are extended first.
  A lower bound of differences, computed with the BWT of the reversed
  reference, is used to prune hopeless branches.

  The search of a read stops without an alignment when the number of waiting
  branches exceeds --max-frontier, or the number of extended branches
  exceeds --max-expansions.

Output format:
  Tab-delimited format with 11+ columns:

    1.  query,      Query sequence ID.
    2.  qlen,       Query sequence length.
    3.  contig,     Reference sequence ID.
    4.  pos,        1-based start position in the reference sequence.
    5.  strand,     Strand of the read, "+" or "-".
    6.  mismatches, Number of mismatches.
    7.  gapOpens,   Number of gap opens.
    8.  gapExts,    Number of gap extensions.
    9.  score,      Penalty score, the lower the better.
    10. hits,       Number of reference locations with the same alignment.
    11. trace,      Alignment in the extended CIGAR format, e.g., 12=1X7=.

  Extra columns with the flag -a/--all:

    12. ref,        Aligned reference sequence.
    13. align,      Alignment text, "|" for matches.
    14. read,       Aligned read sequence, in the strand of the reference.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		seq.ValidateSeq = false

		var fhLog *os.File
		if opt.Log2File {
			fhLog = addLog(opt.LogFile, opt.Verbose)
		}

		verbose := opt.Verbose
		outputLog := opt.Verbose || opt.Log2File

		timeStart := time.Now()
		defer func() {
			if outputLog {
				log.Info()
				log.Infof("elapsed time: %s", time.Since(timeStart))
				log.Info()
			}
			if opt.Log2File {
				fhLog.Close()
			}
		}()

		// ---------------------------------------------------------------
		// basic flags

		prefix := expandPath(getFlagString(cmd, "index"))
		if prefix == "" {
			checkError(fmt.Errorf("flag -d/--index is needed"))
		}
		checkError(index.CheckFiles(prefix))

		outFile := getFlagString(cmd, "out-file")
		moreColumns := getFlagBool(cmd, "all")
		histFile := expandPath(getFlagString(cmd, "hist-plot"))

		aopt := &align.Options{
			MismatchPenalty:     getFlagNonNegativeInt(cmd, "mismatch-penalty"),
			GapOpenPenalty:      getFlagNonNegativeInt(cmd, "gap-open-penalty"),
			GapExtensionPenalty: getFlagNonNegativeInt(cmd, "gap-ext-penalty"),

			MaxEditDistance:  getFlagNonNegativeInt(cmd, "max-diff"),
			MaxGapOpens:      getFlagNonNegativeInt(cmd, "max-gap-open"),
			MaxGapExtensions: getFlagNonNegativeInt(cmd, "max-gap-ext"),

			MaxFrontier:   getFlagNonNegativeInt(cmd, "max-frontier"),
			MaxExpansions: getFlagNonNegativeInt(cmd, "max-expansions"),

			DisableLowerBound: getFlagBool(cmd, "no-lower-bound"),
		}
		checkError(aopt.Validate())

		maxQueryConcurrency := getFlagNonNegativeInt(cmd, "max-query-conc")
		if maxQueryConcurrency == 0 {
			maxQueryConcurrency = runtime.NumCPU()
		}

		// ---------------------------------------------------------------

		if outputLog {
			log.Infof("BWTMap v%s", VERSION)
			log.Info("  https://github.com/shenwei356/BWTMap")
			log.Info()
		}

		// ---------------------------------------------------------------
		// input files

		if outputLog {
			log.Info("checking input files ...")
		}

		inDir := expandPath(getFlagString(cmd, "in-dir"))
		var files []string
		if inDir != "" {
			files = getFilesFromDir(inDir, getFlagString(cmd, "file-regexp"), opt.NumCPUs)
			if len(files) == 0 {
				checkError(fmt.Errorf("no read files found in: %s", inDir))
			}
		} else {
			files = getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)
		}

		if outputLog {
			if len(files) == 1 {
				if isStdin(files[0]) {
					log.Info("  no files given, reading from stdin")
				} else {
					log.Infof("  %d input file given: %s", len(files), files[0])
				}
			} else {
				log.Infof("  %d input file(s) given", len(files))
			}
		}

		outFileClean := filepath.Clean(outFile)
		for _, file := range files {
			if !isStdin(file) && filepath.Clean(file) == outFileClean {
				checkError(fmt.Errorf("out file should not be one of the input file"))
			}
		}

		// ---------------------------------------------------------------
		// loading index

		if outputLog {
			log.Info()
			log.Infof("loading index: %s", prefix)
		}

		idx, err := index.NewFromPrefix(prefix, maxQueryConcurrency)
		checkError(err)

		aligner, err := idx.NewAligner(aopt)
		checkError(err)

		contigs := idx.Info.Contigs

		if outputLog {
			log.Infof("index loaded in %s: %d sequences, %d bases", time.Since(timeStart), len(contigs), idx.Info.Length)
			log.Info()
			log.Infof("-------------------- [main parameters] --------------------")
			log.Infof("  penalties of mismatch, gap open and gap extension: %d, %d, %d",
				aopt.MismatchPenalty, aopt.GapOpenPenalty, aopt.GapExtensionPenalty)
			log.Infof("  maximum differences: %d", aopt.MaxEditDistance)
			log.Infof("  maximum gap opens and extensions: %d, %d", aopt.MaxGapOpens, aopt.MaxGapExtensions)
			log.Infof("  search limits of frontier size and expansions: %d, %d", aopt.MaxFrontier, aopt.MaxExpansions)
			if aopt.DisableLowerBound {
				log.Infof("  lower-bound pruning: disabled")
			}
			log.Infof("-------------------- [main parameters] --------------------")
			log.Info()
			log.Infof("aligning with %d threads, maximum number of concurrent queries: %d", opt.NumCPUs, maxQueryConcurrency)
		}

		// ---------------------------------------------------------------
		// aligning

		timeStart1 := time.Now()

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()

		var total, matched, budgetExceeded, ambiguous, crossed uint64
		var speed float64 // reads per minute
		var mismatches []float64

		fmt.Fprintf(outfh, "query\tqlen\tcontig\tpos\tstrand\tmismatches\tgapOpens\tgapExts\tscore\thits\ttrace")
		if moreColumns {
			fmt.Fprintf(outfh, "\tref\talign\tread")
		}
		fmt.Fprintln(outfh)

		var buf bytes.Buffer

		printResult := func(q *Query) {
			total++

			if verbose {
				if (total < 128 && total&7 == 0) || total&127 == 0 {
					speed = float64(total) / time.Since(timeStart1).Minutes()
					fmt.Fprintf(os.Stderr, "processed queries: %d, speed: %.3f queries per minute\r", total, speed)
				}
			}

			if q.stats != nil && q.stats.BudgetExceeded {
				budgetExceeded++
			}

			a := q.result
			if a == nil {
				poolQuery.Put(q)
				return
			}

			i, pos, crosses := idx.Resolve(a.Start, a.RefLength())
			if i < 0 || crosses {
				crossed++
				poolQuery.Put(q)
				return
			}

			matched++
			mismatches = append(mismatches, float64(a.Mismatches))
			if idx.HasAmbiguity(a.Start, a.End()) {
				ambiguous++
			}

			fmt.Fprintf(outfh, "%s\t%d\t%s\t%d\t%c\t%d\t%d\t%d\t%d\t%d\t%s",
				q.seqID, len(q.seq),
				contigs[i].Name, pos, a.Strand(),
				a.Mismatches, a.GapOpens, a.GapExtensions, a.Score,
				a.Hits, a.Trace,
			)
			if moreColumns {
				ref, err := idx.SubSeq(a.Start, a.End())
				checkError(err)

				read := q.seq
				if a.NegativeStrand {
					s, err := seq.NewSeq(seq.DNAredundant, append([]byte(nil), read...))
					checkError(err)
					read = s.RevComInplace().Seq
				}

				buf.Reset()
				formatAlignment(&buf, ref, read, a.Trace)
				outfh.Write(buf.Bytes())
			}
			fmt.Fprintln(outfh)

			poolQuery.Put(q)
		}

		// outputter, keeping the input order
		ch := make(chan *Query, maxQueryConcurrency)
		done := make(chan int)
		go func() {
			var id uint64 = 1
			buffer := make(map[uint64]*Query, maxQueryConcurrency)
			var q1 *Query
			var ok bool
			for q := range ch {
				if q.id != id {
					buffer[q.id] = q
					continue
				}
				printResult(q)
				id++

				for {
					if q1, ok = buffer[id]; !ok {
						break
					}
					delete(buffer, id)
					printResult(q1)
					id++
				}
			}
			done <- 1
		}()

		var wg sync.WaitGroup
		tokens := make(chan int, maxQueryConcurrency)

		var record *fastx.Record
		var id uint64

		for _, file := range files {
			fastxReader, err := fastx.NewReader(nil, file, "")
			checkError(err)

			for {
				record, err = fastxReader.Read()
				if err != nil {
					if err == io.EOF {
						break
					}
					checkError(err)
					break
				}

				id++
				query := poolQuery.Get().(*Query)
				query.Reset()
				query.id = id

				query.seqID = append(query.seqID, record.ID...)
				query.seq = append(query.seq, bytes.ToUpper(record.Seq.Seq)...)

				if len(query.seq) == 0 {
					ch <- query
					continue
				}

				tokens <- 1
				wg.Add(1)

				go func(query *Query) {
					defer func() {
						<-tokens
						wg.Done()
					}()

					var err error
					query.result, query.stats, err = aligner.AlignSeq(query.seq)
					if err != nil {
						checkError(errors.Wrapf(err, "align %s", query.seqID))
					}

					ch <- query
				}(query)
			}
			fastxReader.Close()
		}
		wg.Wait()
		close(ch)
		<-done

		if outputLog {
			fmt.Fprintf(os.Stderr, "\n")

			speed = float64(total) / time.Since(timeStart1).Minutes()
			log.Infof("")
			log.Infof("processed queries: %d, speed: %.3f queries per minute", total, speed)
			if total > 0 {
				log.Infof("%.4f%% (%d/%d) queries aligned", float64(matched)/float64(total)*100, matched, total)
			}
			if len(mismatches) > 1 {
				mean, std := stat.MeanStdDev(mismatches, nil)
				log.Infof("  mismatches of aligned queries: mean %.3f, stdev %.3f", mean, std)
			}
			if ambiguous > 0 {
				log.Infof("  %d alignments overlap with ambiguous bases in the reference", ambiguous)
			}
			if crossed > 0 {
				log.Infof("  %d alignments crossing two reference sequences are discarded", crossed)
			}
			if budgetExceeded > 0 {
				log.Warningf("  %d queries reached the search limits, try increasing --max-frontier or --max-expansions", budgetExceeded)
			}
			log.Infof("done aligning")
			if outFile != "-" {
				log.Infof("alignment results saved to: %s", outFile)
			}
		}

		if histFile != "" {
			checkError(plotMismatches(mismatches, aopt.MaxEditDistance, histFile))
			if outputLog {
				log.Infof("histogram of mismatches saved to: %s", histFile)
			}
		}

		checkError(idx.Close())
	},
}

// formatAlignment writes the three extra columns of an alignment,
// the read should be in the strand of the reference.
func formatAlignment(buf *bytes.Buffer, ref, read []byte, trace *align.Trace) {
	var r, q []byte
	var a []byte
	var i, j int // positions in ref and read
	for _, run := range trace.Runs() {
		for k := 0; k < run.Len; k++ {
			switch run.State {
			case align.Match:
				r, a, q = append(r, ref[i]), append(a, '|'), append(q, read[j])
				i++
				j++
			case align.Mismatch:
				r, a, q = append(r, ref[i]), append(a, ' '), append(q, read[j])
				i++
				j++
			case align.Insertion:
				r, a, q = append(r, '-'), append(a, ' '), append(q, read[j])
				j++
			case align.Deletion:
				r, a, q = append(r, ref[i]), append(a, ' '), append(q, '-')
				i++
			}
		}
	}

	buf.WriteByte('\t')
	buf.Write(r)
	buf.WriteByte('\t')
	buf.Write(a)
	buf.WriteByte('\t')
	buf.Write(q)
}

// plotMismatches plots the histogram of mismatches of aligned reads.
func plotMismatches(mismatches []float64, maxDiff int, file string) error {
	p := plot.New()
	p.Title.Text = "Mismatches of aligned reads"
	p.X.Label.Text = "mismatches"
	p.Y.Label.Text = "reads"

	if len(mismatches) > 0 {
		h, err := plotter.NewHist(plotter.Values(mismatches), maxDiff+1)
		if err != nil {
			return errors.Wrap(err, "plot histogram")
		}
		p.Add(h)
	}

	return p.Save(6*vg.Inch, 4*vg.Inch, file)
}

func init() {
	RootCmd.AddCommand(alignCmd)

	alignCmd.Flags().StringP("index", "d", "",
		formatFlagUsage(`Path prefix of index files created by "bwtmap index".`))

	alignCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports a ".gz" suffix ("-" for stdout).`))

	alignCmd.Flags().BoolP("all", "a", false,
		formatFlagUsage(`Output more columns, i.e., aligned sequences.`))

	alignCmd.Flags().StringP("hist-plot", "", "",
		formatFlagUsage(`Plot the histogram of mismatches of aligned reads to a file, supported formats: png, svg, pdf, jpg.`))

	alignCmd.Flags().IntP("max-query-conc", "J", 0,
		formatFlagUsage(`Maximum number of concurrent queries (0 for the number of CPUs).`))

	alignCmd.Flags().StringP("in-dir", "I", "",
		formatFlagUsage(`Directory containing FASTA/Q files. Directory symlinks are followed.`))

	alignCmd.Flags().StringP("file-regexp", "r", `\.(f[aq](st[aq])?|fna)(.gz)?$`,
		formatFlagUsage(`Regular expression for matching sequence files in -I/--in-dir, case ignored.`))

	// scoring and limits

	alignCmd.Flags().IntP("max-diff", "n", align.DefaultOptions.MaxEditDistance,
		formatFlagUsage(`Maximum number of differences in an alignment.`))

	alignCmd.Flags().IntP("max-gap-open", "", align.DefaultOptions.MaxGapOpens,
		formatFlagUsage(`Maximum number of gap opens.`))

	alignCmd.Flags().IntP("max-gap-ext", "", align.DefaultOptions.MaxGapExtensions,
		formatFlagUsage(`Maximum number of gap extensions.`))

	alignCmd.Flags().IntP("mismatch-penalty", "M", align.DefaultOptions.MismatchPenalty,
		formatFlagUsage(`Mismatch penalty.`))

	alignCmd.Flags().IntP("gap-open-penalty", "O", align.DefaultOptions.GapOpenPenalty,
		formatFlagUsage(`Gap open penalty.`))

	alignCmd.Flags().IntP("gap-ext-penalty", "E", align.DefaultOptions.GapExtensionPenalty,
		formatFlagUsage(`Gap extension penalty.`))

	alignCmd.Flags().IntP("max-frontier", "", align.DefaultOptions.MaxFrontier,
		formatFlagUsage(`Maximum number of waiting partial alignments of a read (0 for no limit).`))

	alignCmd.Flags().IntP("max-expansions", "", align.DefaultOptions.MaxExpansions,
		formatFlagUsage(`Maximum number of extended partial alignments of a read (0 for no limit).`))

	alignCmd.Flags().BoolP("no-lower-bound", "", false,
		formatFlagUsage(`Do not prune partial alignments with the lower bound of differences. It's slow.`))

	alignCmd.SetUsageTemplate(usageTemplate("-d <index prefix> [read.fq.gz ...] [-o result.tsv.gz]"))
}

// Query is an object for each read, it also contains the alignment.
type Query struct {
	id     uint64 // 1-based input order
	seqID  []byte
	seq    []byte
	result *align.Alignment
	stats  *align.Stats
}

// Reset reset the data for next round of using
func (q *Query) Reset() {
	q.id = 0
	q.seqID = q.seqID[:0]
	q.seq = q.seq[:0]
	q.result = nil
	q.stats = nil
}

var poolQuery = &sync.Pool{New: func() interface{} {
	return &Query{
		seqID: make([]byte, 0, 128),
		seq:   make([]byte, 0, 1<<10),
	}
}}
