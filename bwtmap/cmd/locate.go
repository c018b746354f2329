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
	"os"
	"strings"
	"time"

	"github.com/shenwei356/BWTMap/bwtmap/index"
	"github.com/shenwei356/bio/seq"
	"github.com/spf13/cobra"
)

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Locate exact matches of short patterns",
	Long: `Locate exact matches of short patterns

Patterns containing bases other than ACGT do not match.
Matches crossing two reference sequences are skipped.

Output format:
  Tab-delimited format with 4 columns:

    1. pattern,  The pattern.
    2. contig,   Reference sequence ID.
    3. pos,      1-based start position in the reference sequence.
    4. strand,   "-" for matches of the reverse complement of the pattern.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		seq.ValidateSeq = false

		var fhLog *os.File
		if opt.Log2File {
			fhLog = addLog(opt.LogFile, opt.Verbose)
		}
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

		prefix := expandPath(getFlagString(cmd, "index"))
		if prefix == "" {
			checkError(fmt.Errorf("flag -d/--index is needed"))
		}
		if len(args) == 0 {
			checkError(fmt.Errorf("patterns needed"))
		}
		bothStrands := getFlagBool(cmd, "both-strands")
		outFile := getFlagString(cmd, "out-file")

		idx, err := index.NewFromPrefix(prefix, 1)
		checkError(err)

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()

		fmt.Fprintln(outfh, "pattern\tcontig\tpos\tstrand")

		contigs := idx.Info.Contigs
		var matched int
		output := func(pattern []byte, locs []int, strand byte) {
			var i, pos int
			var crosses bool
			for _, loc := range locs {
				i, pos, crosses = idx.Resolve(loc, len(pattern))
				if i < 0 || crosses {
					continue
				}
				matched++
				fmt.Fprintf(outfh, "%s\t%s\t%d\t%c\n", pattern, contigs[i].Name, pos, strand)
			}
		}

		var p []byte
		for _, pattern := range args {
			p = bytes.ToUpper([]byte(pattern))
			output(p, idx.LocateExact(p), index.Strands[0])

			if bothStrands {
				s, err := seq.NewSeq(seq.DNAredundant, append([]byte(nil), p...))
				checkError(err)
				rc := s.RevComInplace().Seq
				if !bytes.Equal(rc, p) { // palindromes
					output(p, idx.LocateExact(rc), index.Strands[1])
				}
			}
		}

		if outputLog {
			log.Infof("%d matches of %d patterns found", matched, len(args))
		}

		checkError(idx.Close())
	},
}

func init() {
	RootCmd.AddCommand(locateCmd)

	locateCmd.Flags().StringP("index", "d", "",
		formatFlagUsage(`Path prefix of index files created by "bwtmap index".`))

	locateCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports a ".gz" suffix ("-" for stdout).`))

	locateCmd.Flags().BoolP("both-strands", "b", false,
		formatFlagUsage(`Also locate the reverse complement sequences of patterns.`))

	locateCmd.SetUsageTemplate(usageTemplate("-d <index prefix> [-b] <pattern> [<pattern> ...]"))
}
