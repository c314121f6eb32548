package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ftl/lwplot/config"
	"github.com/ftl/lwplot/ldump"
	"github.com/ftl/lwplot/wave"
)

var infoCmd = &cobra.Command{
	Use:   "info <ldump>...",
	Short: "show the header and timing of dump files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runWithCtx(runInfo),
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(_ context.Context, cfg *config.Config, cmd *cobra.Command, args []string) error {
	dumps := make([]*ldump.Dump, 0, len(args))
	for _, filename := range args {
		dump, err := ldump.ReadFile(filename)
		if err != nil {
			return err
		}
		dumps = append(dumps, dump)
	}

	writeInfo(cmd.OutOrStdout(), args, dumps, cfg.Clock)
	return nil
}

func writeInfo(w io.Writer, filenames []string, dumps []*ldump.Dump, clock float64) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"File", "Rows", "Incomplete", "wave_samp_per", "yscale", "Wave Time [s]", "Duration [s]", "Resolution [Hz]"})
	for i, dump := range dumps {
		timing := wave.NewTiming(clock, dump.Header.WavesPerSample)
		valid := len(dump.Rows) - dump.Incomplete
		table.Append([]string{
			filenames[i],
			strconv.Itoa(len(dump.Rows)),
			strconv.Itoa(dump.Incomplete),
			strconv.Itoa(dump.Header.WavesPerSample),
			strconv.Itoa(dump.Header.YScale),
			fmt.Sprintf("%.4g", timing.WaveTime()),
			fmt.Sprintf("%.4g", float64(valid)*timing.WaveTime()),
			fmt.Sprintf("%.4g", timing.FrequencyResolution(valid)),
		})
	}
	table.Render()
}
