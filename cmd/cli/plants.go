package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var plantsCmd = &cobra.Command{
	Use:   "plants",
	Short: "Manage your plant collection",
}

var listPlantsCmd = &cobra.Command{
	Use:   "list",
	Short: "List your plants, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listPlants()
	},
}

var waterPlantCmd = &cobra.Command{
	Use:   "water <plant-id>",
	Short: "Record a watering for a plant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return waterPlant(args[0])
	},
}

var deletePlantCmd = &cobra.Command{
	Use:   "delete <plant-id>",
	Short: "Remove a plant from your collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return deletePlant(args[0])
	},
}

func init() {
	plantsCmd.AddCommand(listPlantsCmd)
	plantsCmd.AddCommand(waterPlantCmd)
	plantsCmd.AddCommand(deletePlantCmd)
}

type plantRow struct {
	ID                 string     `json:"id"`
	PlantName          string     `json:"plant_name"`
	Species            string     `json:"species"`
	IdentificationDate time.Time  `json:"identification_date"`
	LastWatered        *time.Time `json:"last_watered"`
	NextWateringDate   *time.Time `json:"next_watering_date"`
}

func listPlants() error {
	body, err := apiRequest("GET", "/api/v1/plants", nil)
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(body))
		return nil
	}

	var result struct {
		Plants []plantRow `json:"plants"`
		Count  int        `json:"count"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if result.Count == 0 {
		fmt.Println("No plants yet. Identify one with the mobile app or the API.")
		return nil
	}

	for _, p := range result.Plants {
		next := "unscheduled"
		if p.NextWateringDate != nil {
			next = p.NextWateringDate.Format("2006-01-02")
		}
		fmt.Printf("%s  %-25s %-30s next watering: %s\n", p.ID, p.PlantName, p.Species, next)
	}
	fmt.Printf("\n%d plant(s)\n", result.Count)
	return nil
}

func waterPlant(plantID string) error {
	body, err := apiRequest("POST", "/api/v1/plants/"+plantID+"/water", nil)
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(body))
		return nil
	}

	var result struct {
		Plant plantRow `json:"plant"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	next := ""
	if result.Plant.NextWateringDate != nil {
		next = result.Plant.NextWateringDate.Format("2006-01-02")
	}
	fmt.Printf("✓ Watered %s, next watering %s\n", result.Plant.PlantName, next)
	return nil
}

func deletePlant(plantID string) error {
	body, err := apiRequest("DELETE", "/api/v1/plants/"+plantID, nil)
	if err != nil {
		return err
	}

	if output == "json" {
		fmt.Println(string(body))
		return nil
	}

	fmt.Println("✓ Plant deleted")
	return nil
}
