package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/friendsincode/radioport/internal/catalog"
)

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "List the stations in the catalog",
	RunE:  runStations,
}

func init() {
	rootCmd.AddCommand(stationsCmd)
}

func runStations(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	cat, err := catalog.Load(cfg.StationsFile, cfg.DataRoot)
	if err != nil {
		return err
	}

	for _, name := range cat.Names() {
		station, err := cat.Station(name)
		if err != nil {
			return err
		}
		line := fmt.Sprintf("%-24s %3d tracks", station.Profile.Name, len(station.Tracks))
		if station.Profile.HasDJ() {
			line += "  dj: " + station.Profile.DJ.Name
		}
		if station.Profile.HasAds {
			line += "  ads"
		}
		fmt.Println(line)
	}
	return nil
}
