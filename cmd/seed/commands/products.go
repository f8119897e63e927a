package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"lorryadmin/internal/domain"

	"github.com/spf13/cobra"
)

var sampleProducts = []domain.Item{
	{ID: "tata-407", Name: "Tata 407", Description: "Light commercial truck, 2.5 t payload", PriceMinor: 1250000, ActionLabel: "Book Now", Available: true},
	{ID: "eicher-pro-2049", Name: "Eicher Pro 2049", Description: "Intermediate truck, 4.9 t payload", PriceMinor: 1575000, ActionLabel: "Book Now", Available: true},
	{ID: "ashok-leyland-dost", Name: "Ashok Leyland Dost", Description: "Mini truck for city hauls", PriceMinor: 780000, ActionLabel: "Enquire", Available: false},
}

func productsCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "products",
		Short: "Write listing items into the Product collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			items := sampleProducts
			if file != "" {
				raw, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(raw, &items); err != nil {
					return fmt.Errorf("parse %s: %w", file, err)
				}
			}

			store, closeFn, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			for _, item := range items {
				if item.ID == "" {
					id, err := store.Push(cmd.Context(), domain.CollectionProducts, item)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "pushed %s (%s)\n", item.Name, id)
					continue
				}

				if err := store.Write(cmd.Context(), domain.CollectionProducts+"/"+item.ID, item); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", item.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON array of items (default built-in samples)")
	return cmd
}
