// Copyright (c) 2025 Egghead.AI
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import "strings"

// Resource is a curated UC Davis campus resource.
type Resource struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

// AggieResources is the curated resource catalog (MVP "RAG").
var AggieResources = []Resource{
	{ID: "aggie_mental_health", Title: "Aggie Mental Health", Tags: []string{"mental_health"}},
	{ID: "aggie_compass", Title: "Aggie Compass - Basic Needs", Tags: []string{"basic_needs"}},
	{ID: "asucd_pantry", Title: "ASUCD Pantry", Tags: []string{"basic_needs", "food"}},
	{ID: "shcs", Title: "Student Health and Counseling Services", Tags: []string{"health", "counseling"}},
	{ID: "career_center", Title: "Career Center", Tags: []string{"career"}},
	{ID: "aatc", Title: "AATC", Tags: []string{"academics", "tutoring"}},
	{ID: "care", Title: "CARE (sexual assault/harassment resource center)", Tags: []string{"safety", "support"}},
}

// maxReferences caps how many resources a single reply cites.
const maxReferences = 3

// keywordRoutes maps trigger keywords to resource ids, checked in order.
var keywordRoutes = []struct {
	keywords []string
	ids      []string
}{
	{[]string{"anxious", "depressed", "therapy", "counsel", "stress"}, []string{"shcs", "aggie_mental_health"}},
	{[]string{"food", "hungry", "pantry", "money", "rent", "basic needs"}, []string{"aggie_compass", "asucd_pantry"}},
	{[]string{"job", "intern", "resume", "career"}, []string{"career_center"}},
	{[]string{"tutor", "class help", "study", "academic"}, []string{"aatc"}},
}

// pickResources keyword-routes a message to curated resources, capped at
// maxReferences.
func pickResources(message string) []Resource {
	msg := strings.ToLower(message)
	var refs []Resource
	for _, route := range keywordRoutes {
		if !containsAny(msg, route.keywords) {
			continue
		}
		for _, id := range route.ids {
			if r, ok := resourceByID(id); ok {
				refs = append(refs, r)
			}
		}
	}
	if len(refs) > maxReferences {
		refs = refs[:maxReferences]
	}
	return refs
}

func containsAny(msg string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(msg, k) {
			return true
		}
	}
	return false
}

func resourceByID(id string) (Resource, bool) {
	for _, r := range AggieResources {
		if r.ID == id {
			return r, true
		}
	}
	return Resource{}, false
}
