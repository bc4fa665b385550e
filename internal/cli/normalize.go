package cli

import (
	"encoding/json"
	"fmt"

	"github.com/diagnosis/visitor-hosts/internal/hostsync"
	"github.com/spf13/cobra"
)

type phoneResult struct {
	Input      string              `json:"input"`
	Normalized string              `json:"normalized"`
	Class      hostsync.PhoneClass `json:"class"`
}

type locationResult struct {
	Input    string `json:"input"`
	Location string `json:"location,omitempty"`
}

type normalizeResult struct {
	Phones    []phoneResult    `json:"phones,omitempty"`
	Locations []locationResult `json:"locations,omitempty"`
}

// NewNormalizeCommand creates the normalize command for checking how raw
// platform values would be stored.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	var phones, locations []string

	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Show how phone and location values would be normalized",
		Example: `  hostsync normalize --phone "3344 5566" --phone "01098765432"
  hostsync normalize --location "Barwa Towers - Level 3" --format json`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(phones) == 0 && len(locations) == 0 {
				return WrapExitError(ExitCommandError, "nothing to normalize", fmt.Errorf("pass --phone or --location"))
			}
			res := normalizeResult{}
			for _, p := range phones {
				res.Phones = append(res.Phones, phoneResult{
					Input:      p,
					Normalized: hostsync.NormalizePhone(p),
					Class:      hostsync.ClassifyPhone(p),
				})
			}
			for _, l := range locations {
				lr := locationResult{Input: l}
				if loc := hostsync.ResolveLocation(l); loc != nil {
					lr.Location = string(*loc)
				}
				res.Locations = append(res.Locations, lr)
			}
			return writeNormalized(cmd, rootOpts.Format, res)
		},
	}

	cmd.Flags().StringArrayVar(&phones, "phone", nil, "raw phone value (repeatable)")
	cmd.Flags().StringArrayVar(&locations, "location", nil, "raw location text (repeatable)")
	return cmd
}

func writeNormalized(cmd *cobra.Command, format string, res normalizeResult) error {
	w := cmd.OutOrStdout()
	if format == "json" {
		return json.NewEncoder(w).Encode(res)
	}
	for _, p := range res.Phones {
		fmt.Fprintf(w, "phone    %q -> %q (%s)\n", p.Input, p.Normalized, p.Class)
	}
	for _, l := range res.Locations {
		loc := l.Location
		if loc == "" {
			loc = "<none>"
		}
		fmt.Fprintf(w, "location %q -> %s\n", l.Input, loc)
	}
	return nil
}
