package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/flowforge/flowforge/internal/campaign"
	"github.com/flowforge/flowforge/internal/gateway"
)

var campaignCreateName string

var campaignCmd = &cobra.Command{
	Use:   "campaign",
	Short: "Campaign management commands",
}

var campaignListCmd = &cobra.Command{
	Use:   "list",
	Short: "List campaigns",
	RunE:  runCampaignList,
}

var campaignShowCmd = &cobra.Command{
	Use:   "show <campaign_id>",
	Short: "Show campaign details",
	Args:  cobra.ExactArgs(1),
	RunE:  runCampaignShow,
}

var campaignCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a blank campaign",
	RunE:  runCampaignCreate,
}

var campaignDeleteCmd = &cobra.Command{
	Use:   "delete <campaign_id>",
	Short: "Delete a campaign",
	Args:  cobra.ExactArgs(1),
	RunE:  runCampaignDelete,
}

var campaignStatusCmd = &cobra.Command{
	Use:   "status <campaign_id> <active|inactive>",
	Short: "Update a campaign's status",
	Args:  cobra.ExactArgs(2),
	RunE:  runCampaignStatus,
}

func init() {
	campaignCreateCmd.Flags().StringVar(&campaignCreateName, "name", "New Campaign", "Campaign name")

	campaignCmd.AddCommand(campaignListCmd, campaignShowCmd, campaignCreateCmd, campaignDeleteCmd, campaignStatusCmd)
	rootCmd.AddCommand(campaignCmd)
}

// apiClient builds a gateway client against the configured API base URL.
func apiClient() (*gateway.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return gateway.NewClient(cfg.Gateway.BaseURL, cfg.API.APIKey), nil
}

func runCampaignList(cmd *cobra.Command, args []string) error {
	client, err := apiClient()
	if err != nil {
		return err
	}

	campaigns, err := client.List(context.Background())
	if err != nil {
		return err
	}

	if len(campaigns) == 0 {
		fmt.Println("No campaigns found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tSTEPS\tMODIFIED")
	for _, c := range campaigns {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			c.ID, c.Name, c.Status, len(c.Steps),
			c.LastModified.Local().Format(time.RFC3339),
		)
	}
	return w.Flush()
}

func runCampaignShow(cmd *cobra.Command, args []string) error {
	client, err := apiClient()
	if err != nil {
		return err
	}

	c, err := client.Get(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("ID:       %s\n", c.ID)
	fmt.Printf("Name:     %s\n", c.Name)
	fmt.Printf("Owner:    %s\n", c.UserID)
	fmt.Printf("Status:   %s\n", c.Status)
	fmt.Printf("Modified: %s\n", c.LastModified.Local().Format(time.RFC3339))
	fmt.Printf("Steps:    %d\n", len(c.Steps))
	for i, s := range c.Steps {
		fmt.Printf("  %d. %s (%d items, %d rules)\n", i+1, s.Name, len(s.ContentItems), len(s.Logic))
	}

	if problems := c.CheckReferences(); len(problems) > 0 {
		fmt.Printf("Dangling references:\n")
		for _, p := range problems {
			fmt.Printf("  - step %s: %s\n", p.StepID, p.Detail)
		}
	}
	return nil
}

func runCampaignCreate(cmd *cobra.Command, args []string) error {
	client, err := apiClient()
	if err != nil {
		return err
	}

	draft := campaign.New("", "step-1", "", time.Now())
	draft.Name = campaignCreateName

	created, err := client.Create(context.Background(), draft)
	if err != nil {
		return err
	}

	fmt.Printf("Created campaign %s (%s)\n", created.ID, created.Name)
	return nil
}

func runCampaignDelete(cmd *cobra.Command, args []string) error {
	client, err := apiClient()
	if err != nil {
		return err
	}

	if err := client.Delete(context.Background(), args[0]); err != nil {
		return err
	}

	fmt.Printf("Deleted campaign %s\n", args[0])
	return nil
}

func runCampaignStatus(cmd *cobra.Command, args []string) error {
	status := campaign.Status(args[1])
	if !status.Valid() {
		return fmt.Errorf("status must be active or inactive, got %q", args[1])
	}

	client, err := apiClient()
	if err != nil {
		return err
	}

	updated, err := client.UpdateStatus(context.Background(), args[0], status)
	if err != nil {
		return err
	}

	fmt.Printf("Campaign %s is now %s\n", updated.ID, updated.Status)
	return nil
}
