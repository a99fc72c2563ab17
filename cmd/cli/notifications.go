package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Inspect your notifications",
}

var listNotificationsCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listNotifications()
	},
}

var markReadCmd = &cobra.Command{
	Use:   "read <notification-id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return markNotificationRead(args[0])
	},
}

func init() {
	notificationsCmd.AddCommand(listNotificationsCmd)
	notificationsCmd.AddCommand(markReadCmd)
}

func listNotifications() error {
	body, err := apiRequest("GET", "/api/v1/notifications", nil)
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(body))
		return nil
	}

	var result struct {
		Notifications []struct {
			ID        string    `json:"id"`
			Type      string    `json:"type"`
			Message   string    `json:"message"`
			IsRead    bool      `json:"is_read"`
			CreatedAt time.Time `json:"created_at"`
		} `json:"notifications"`
		Unread int `json:"unread"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	for _, n := range result.Notifications {
		marker := " "
		if !n.IsRead {
			marker = "*"
		}
		fmt.Printf("%s %s  %-20s %s  (%s)\n",
			marker, n.CreatedAt.Format("2006-01-02 15:04"), n.Type, n.Message, n.ID)
	}
	fmt.Printf("\n%d unread\n", result.Unread)
	return nil
}

func markNotificationRead(id string) error {
	body, err := apiRequest("POST", "/api/v1/notifications/"+id+"/read", nil)
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(body))
		return nil
	}

	fmt.Println("✓ Marked as read")
	return nil
}
