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
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/shenwei356/BWTMap/bwtmap/index"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Generate an index from FASTA/Q sequences",
	Long: `Generate an index from FASTA/Q sequences

Input:
  1. Input plain or gzipped FASTA/Q files can be given via positional
     arguments or the flag -X/--infile-list with the list of input files,
  2. Or a directory containing sequence files via the flag -I/--in-dir,
     with multiple-level sub-directories allowed. A regular expression
     for matching sequencing files is available via the flag -r/--file-regexp.

Attention:
  1. All sequences are concatenated into one reference, alignments crossing
     two sequences are reported as unaligned.
  2. Bases other than ACGT are replaced with pseudo-random bases in the index,
     their positions are saved in the .amb file.

Output files with the prefix (-d/--index):
  <prefix>.bwt   BWT of the reference
  <prefix>.sa    sampled suffix array of the reference
  <prefix>.rbwt  BWT of the reversed reference
  <prefix>.rsa   sampled suffix array of the reversed reference
  <prefix>.pac   2-bit packed reference
  <prefix>.ann   metadata and sequence names (TOML)
  <prefix>.amb   runs of ambiguous bases (tab-delimited)

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

		// ---------------------------------------------------------------
		// basic flags

		prefix := expandPath(getFlagString(cmd, "index"))
		if prefix == "" {
			checkError(fmt.Errorf("flag -d/--index is needed"))
		}
		force := getFlagBool(cmd, "force")

		bopt := &index.BuildOptions{
			Verbose: opt.Verbose,

			SAInterval:  getFlagPositiveInt(cmd, "sa-interval"),
			OccInterval: getFlagPositiveInt(cmd, "occ-interval"),
			KmerCacheK:  getFlagNonNegativeInt(cmd, "kmer-cache-k"),
			RandSeed:    getFlagInt64(cmd, "seed"),
		}
		checkError(index.CheckBuildOptions(bopt))

		var err error

		// existing index
		for _, ext := range index.Exts {
			existed, err := pathutil.Exists(prefix + ext)
			checkError(errors.Wrap(err, prefix+ext))
			if !existed {
				continue
			}
			if !force {
				checkError(fmt.Errorf("index file existed: %s, use --force to overwrite", prefix+ext))
			}
			checkError(os.Remove(prefix + ext))
		}
		if dir := filepath.Dir(prefix); dir != "." {
			checkError(os.MkdirAll(dir, 0777))
		}

		// ---------------------------------------------------------------
		// input files

		if outputLog {
			log.Infof("BWTMap v%s", VERSION)
			log.Info("  https://github.com/shenwei356/BWTMap")
			log.Info()

			log.Info("checking input files ...")
		}

		inDir := expandPath(getFlagString(cmd, "in-dir"))
		reFileStr := getFlagString(cmd, "file-regexp")

		var files []string
		if inDir != "" {
			files = getFilesFromDir(inDir, reFileStr, opt.NumCPUs)
		} else {
			files = getFileListFromArgsAndFile(cmd, args, true, "infile-list", true)
			if len(files) == 1 && isStdin(files[0]) && outputLog {
				log.Info("  no files given, reading from stdin")
			}
		}
		if len(files) < 1 {
			checkError(fmt.Errorf("FASTA/Q files needed"))
		} else if outputLog {
			log.Infof("  %d input file(s) given", len(files))
		}

		// ---------------------------------------------------------------
		// log

		if outputLog {
			log.Info()
			log.Infof("-------------------- [main parameters] --------------------")
			log.Infof("  index prefix: %s", prefix)
			log.Infof("  sampling interval of suffix arrays: %d", bopt.SAInterval)
			log.Infof("  interval of occurrence checkpoints: %d", bopt.OccInterval)
			log.Infof("  k-mer size of interval cache: %d", bopt.KmerCacheK)
			log.Infof("  rand seed: %d", bopt.RandSeed)
			log.Infof("-------------------- [main parameters] --------------------")
			log.Info()
			log.Infof("building index ...")
		}

		// ---------------------------------------------------------------

		err = index.Build(prefix, files, bopt)
		if err != nil {
			checkError(fmt.Errorf("failed to build index: %s", err))
		}

		if outputLog {
			var size int64
			for _, ext := range index.Exts {
				if fi, err := os.Stat(prefix + ext); err == nil {
					size += fi.Size()
				}
			}
			log.Infof("finished building index in %s from %d files", time.Since(timeStart), len(files))
			log.Infof("  index size: %s", humanize.Bytes(uint64(size)))
			log.Info()
			log.Infof("index saved with prefix: %s", prefix)
		}
	},
}

// getFilesFromDir collects files in a directory with names matching a regular expression.
func getFilesFromDir(inDir string, reFileStr string, threads int) []string {
	isDir, err := pathutil.IsDir(inDir)
	if err != nil {
		checkError(errors.Wrapf(err, "checking -I/--in-dir"))
	}
	if !isDir {
		checkError(fmt.Errorf("value of -I/--in-dir should be a directory: %s", inDir))
	}

	if !reIgnoreCase.MatchString(reFileStr) {
		reFileStr = reIgnoreCaseStr + reFileStr
	}
	reFile, err := regexp.Compile(reFileStr)
	checkError(errors.Wrapf(err, "failed to parse regular expression for matching file: %s", reFileStr))

	files, err := getFileListFromDir(inDir, reFile, threads)
	checkError(errors.Wrapf(err, "walking dir: %s", inDir))
	if len(files) == 0 {
		log.Warningf("  no files matching regular expression: %s", reFileStr)
	}
	return files
}

func init() {
	RootCmd.AddCommand(indexCmd)

	indexCmd.Flags().StringP("in-dir", "I", "",
		formatFlagUsage(`Directory containing FASTA/Q files. Directory symlinks are followed.`))

	indexCmd.Flags().StringP("file-regexp", "r", `\.(f[aq](st[aq])?|fna)(.gz)?$`,
		formatFlagUsage(`Regular expression for matching sequence files in -I/--in-dir, case ignored.`))

	indexCmd.Flags().StringP("index", "d", "",
		formatFlagUsage(`Path prefix of index files.`))

	indexCmd.Flags().BoolP("force", "", false,
		formatFlagUsage(`Overwrite existing index files.`))

	indexCmd.Flags().IntP("sa-interval", "s", index.DefaultBuildOptions.SAInterval,
		formatFlagUsage(`Sampling interval of suffix arrays. Smaller values make alignment faster and the index larger.`))

	indexCmd.Flags().IntP("occ-interval", "", index.DefaultBuildOptions.OccInterval,
		formatFlagUsage(`Interval of occurrence checkpoints of BWTs.`))

	indexCmd.Flags().IntP("kmer-cache-k", "k", index.DefaultBuildOptions.KmerCacheK,
		formatFlagUsage(`K-mer size of the interval cache for exact locating, built when loading the index. 0 for no cache.`))

	indexCmd.Flags().Int64P("seed", "", index.DefaultBuildOptions.RandSeed,
		formatFlagUsage(`Rand seed for replacing bases other than ACGT.`))

	indexCmd.SetUsageTemplate(usageTemplate("[-k <k>] -d <index prefix> { -I <seqs dir> | -X <file list>} [seq.fa.gz ...]"))
}
