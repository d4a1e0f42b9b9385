package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/PolarWolf314/docuvault/internal/ui"
	"github.com/PolarWolf314/docuvault/internal/utils"
	"github.com/PolarWolf314/docuvault/internal/vault"
	"github.com/PolarWolf314/docuvault/internal/workflows"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var accessJSONOutput bool

func init() {
	accessCmd.Flags().BoolVar(&accessJSONOutput, "json", false, "output in JSON format")
	VaultCmd.AddCommand(accessCmd)
}

var accessCmd = &cobra.Command{
	Use:   "access [document-id]",
	Short: "Shows who can open which documents",
	Long: `Without arguments, lists the documents you own and the documents shared
with you. With a document ID, lists every account holding a wrapped key
for it. Recipients whose public key is no longer published are shown as
orphans.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting access command")

		opts := workflows.AccessOptions{}
		if len(args) == 1 {
			opts.DocumentID = args[0]
		}

		result, err := workflows.Access(context.Background(), opts)
		if err != nil {
			if msg, ok := formatVaultError(err); ok {
				fmt.Println(msg)
				return nil
			}
			return Logger.ErrorfAndReturn("Failed to read vault: %v", err)
		}

		if accessJSONOutput {
			return outputAccessJSON(result)
		}
		if result.Document != nil {
			printDocumentRecipients(result)
			return nil
		}
		printAccessibleDocuments(result)
		return nil
	},
}

type accessDocumentJSON struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Owner      string   `json:"owner"`
	Size       int64    `json:"size"`
	CreatedAt  string   `json:"created_at"`
	Recipients []string `json:"recipients,omitempty"`
}

type accessRecipientJSON struct {
	Account string `json:"account"`
	Status  string `json:"status"`
}

func toAccessDocumentJSON(doc *vault.Document) accessDocumentJSON {
	return accessDocumentJSON{
		ID:         doc.ID,
		Name:       doc.Name,
		Owner:      doc.Owner,
		Size:       doc.Size,
		CreatedAt:  doc.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Recipients: doc.Recipients(),
	}
}

func outputAccessJSON(result *workflows.AccessResult) error {
	out := map[string]any{"account": result.Account}
	if result.Document != nil {
		out["document"] = toAccessDocumentJSON(result.Document)
		recipients := make([]accessRecipientJSON, 0, len(result.Recipients))
		for _, r := range result.Recipients {
			recipients = append(recipients, accessRecipientJSON{Account: r.Account, Status: string(r.Status)})
		}
		out["recipients"] = recipients
	} else {
		owned := make([]accessDocumentJSON, 0, len(result.Owned))
		for _, d := range result.Owned {
			owned = append(owned, toAccessDocumentJSON(d))
		}
		shared := make([]accessDocumentJSON, 0, len(result.Shared))
		for _, d := range result.Shared {
			shared = append(shared, toAccessDocumentJSON(d))
		}
		out["owned"] = owned
		out["shared"] = shared
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printDocumentRecipients(result *workflows.AccessResult) {
	doc := result.Document
	fmt.Printf("%s %s\n", ui.Highlight.Sprint(doc.Name), ui.Muted.Sprint(doc.ID))
	fmt.Println(ui.Field("Owner", 7, ui.Account.Sprint(doc.Owner)))
	fmt.Println(ui.Field("Size", 7, humanize.Bytes(uint64(doc.Size))))
	fmt.Println(ui.Field("Created", 7, humanize.Time(doc.CreatedAt)))
	fmt.Println()

	orphans := 0
	for _, r := range result.Recipients {
		var icon string
		switch r.Status {
		case workflows.RecipientStatusOwner:
			icon = ui.Info.Sprint("★")
		case workflows.RecipientStatusActive:
			icon = ui.Success.Sprint("✓")
		case workflows.RecipientStatusOrphan:
			icon = ui.Warning.Sprint("⚠")
			orphans++
		}
		fmt.Printf("  %s %-44s %s\n", icon, r.Account, r.Status)
	}

	if orphans > 0 {
		fmt.Println()
		fmt.Println(ui.Info.Sprint("→") + " Orphaned recipients still hold a wrapped key but have no published public key.")
		fmt.Println("  Run " + ui.Code.Sprint("docuvault vault revoke "+doc.ID+" <account>") + " to remove them.")
	}
}

func printAccessibleDocuments(result *workflows.AccessResult) {
	fmt.Println("Connected as " + ui.Account.Sprint(result.Account))
	fmt.Println()

	if len(result.Owned) == 0 && len(result.Shared) == 0 {
		fmt.Println(ui.Info.Sprint("→") + " No documents yet. Run " + ui.Code.Sprint("docuvault vault upload <file>"))
		return
	}

	if len(result.Owned) > 0 {
		fmt.Println("Owned:")
		for _, d := range result.Owned {
			fmt.Printf("  %-36s  %-24s  %d recipient(s)\n", d.ID, d.Name, len(d.Recipients()))
		}
	}
	if len(result.Shared) > 0 {
		if len(result.Owned) > 0 {
			fmt.Println()
		}
		fmt.Println("Shared with you:")
		for _, d := range result.Shared {
			fmt.Printf("  %-36s  %-24s  from %s\n", d.ID, d.Name, utils.ShortAccount(d.Owner))
		}
	}
}
