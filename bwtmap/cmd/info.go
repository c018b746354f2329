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
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shenwei356/BWTMap/bwtmap/index"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show information of an index",
	Long: `Show information of an index

Consistency check (-c/--check):
  Random substrings of the reference are located with the BWTs of the
  reference and the reversed reference, and the results should be the same.

`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)

		prefix := expandPath(getFlagString(cmd, "index"))
		if prefix == "" {
			checkError(fmt.Errorf("flag -d/--index is needed"))
		}
		outFile := getFlagString(cmd, "out-file")
		listContigs := getFlagBool(cmd, "contigs")
		checks := getFlagNonNegativeInt(cmd, "check")
		checkLen := getFlagPositiveInt(cmd, "check-len")

		idx, err := index.NewFromPrefix(prefix, 1)
		checkError(err)
		defer func() {
			checkError(idx.Close())
		}()

		outfh, gw, w, err := outStream(outFile, strings.HasSuffix(outFile, ".gz"), opt.CompressionLevel)
		checkError(err)
		defer func() {
			outfh.Flush()
			if gw != nil {
				gw.Close()
			}
			w.Close()
		}()

		info := idx.Info

		if listContigs {
			fmt.Fprintln(outfh, "contig\toffset\tlength")
			for _, c := range info.Contigs {
				fmt.Fprintf(outfh, "%s\t%d\t%d\n", c.Name, c.Offset, c.Length)
			}
			return
		}

		var size int64
		for _, ext := range index.Exts {
			if fi, err := os.Stat(prefix + ext); err == nil {
				size += fi.Size()
			}
		}

		var ambiguous int
		holes := idx.Holes()
		for _, h := range holes {
			ambiguous += h.Length
		}

		fmt.Fprintf(outfh, "index:            %s\n", prefix)
		fmt.Fprintf(outfh, "version:          v%d.%d\n", info.MainVersion, info.MinorVersion)
		fmt.Fprintf(outfh, "size:             %s\n", humanize.Bytes(uint64(size)))
		fmt.Fprintf(outfh, "sequences:        %s\n", humanize.Comma(int64(len(info.Contigs))))
		fmt.Fprintf(outfh, "bases:            %s\n", humanize.Comma(int64(info.Length)))
		fmt.Fprintf(outfh, "ambiguous bases:  %s in %s runs\n", humanize.Comma(int64(ambiguous)), humanize.Comma(int64(len(holes))))
		fmt.Fprintf(outfh, "SA interval:      %d\n", info.SAInterval)
		fmt.Fprintf(outfh, "occ interval:     %d\n", info.OccInterval)
		fmt.Fprintf(outfh, "k-mer cache k:    %d\n", info.KmerCacheK)
		fmt.Fprintf(outfh, "input files:      %d\n", len(info.InputFiles))

		if checks == 0 {
			return
		}
		if checkLen > info.Length {
			checkLen = info.Length
		}

		r := rand.New(rand.NewSource(info.RandSeed))
		var start, failed int
		var f, rv []int
		for i := 0; i < checks; i++ {
			start = r.Intn(info.Length-checkLen+1) + 1
			pattern, err := idx.SubSeq(start, start+checkLen-1)
			checkError(err)

			f, rv = idx.LocateExact(pattern), idx.LocateExactReverse(pattern)
			if !equalInts(f, rv) {
				failed++
				log.Warningf("inconsistent locations of %s: %v vs %v", pattern, f, rv)
			}
		}
		fmt.Fprintf(outfh, "checked patterns: %d, inconsistent: %d\n", checks, failed)
		if failed > 0 {
			outfh.Flush()
			checkError(fmt.Errorf("the index might be broken"))
		}
	},
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if b[i] != v {
			return false
		}
	}
	return true
}

func init() {
	RootCmd.AddCommand(infoCmd)

	infoCmd.Flags().StringP("index", "d", "",
		formatFlagUsage(`Path prefix of index files created by "bwtmap index".`))

	infoCmd.Flags().StringP("out-file", "o", "-",
		formatFlagUsage(`Out file, supports a ".gz" suffix ("-" for stdout).`))

	infoCmd.Flags().BoolP("contigs", "s", false,
		formatFlagUsage(`List reference sequences instead.`))

	infoCmd.Flags().IntP("check", "c", 0,
		formatFlagUsage(`Check the consistency of the two BWTs with N random substrings of the reference.`))

	infoCmd.Flags().IntP("check-len", "l", 20,
		formatFlagUsage(`Length of random substrings for -c/--check.`))

	infoCmd.SetUsageTemplate(usageTemplate("-d <index prefix> [-c 1000]"))
}
