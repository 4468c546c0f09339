package database

import (
	"fmt"
	"log/slog"
	"time"
)

type seedDepartment struct {
	code         string
	names        []string
	designations []string
}

// seedCatalog is the demo roster: ten faculty per school, seeded once so
// a fresh install has something to browse and rate.
var seedCatalog = []seedDepartment{
	{
		code: "SCOPE",
		names: []string{
			"Dr. Ada Lovelace", "Prof. Alan Turing", "Dr. Grace Hopper", "Prof. Donald Knuth",
			"Dr. Linus Torvalds", "Prof. Tim Berners-Lee", "Dr. Margaret Hamilton", "Prof. Dennis Ritchie",
			"Dr. Sophie Wilson", "Prof. Guido van Rossum",
		},
		designations: []string{"Professor", "Associate Professor", "Assistant Professor", "HOD"},
	},
	{
		code: "SENSE",
		names: []string{
			"Dr. Nikola Tesla", "Prof. Michael Faraday", "Dr. Guglielmo Marconi", "Prof. Samuel Morse",
			"Dr. Claude Shannon", "Prof. Jack Kilby", "Dr. Robert Noyce", "Prof. Gordon Moore",
			"Dr. Andrew Grove", "Prof. Robert Hall",
		},
		designations: []string{"Dean", "Professor", "Associate Professor", "Assistant Professor"},
	},
	{
		code: "SMEC",
		names: []string{
			"Dr. Henry Ford", "Prof. Karl Benz", "Prof. Rudolf Diesel", "Dr. James Watt",
			"Prof. George Stephenson", "Dr. Isambard Brunel", "Prof. Nikolaus Otto", "Dr. Elijah McCoy",
			"Prof. Gottlieb Daimler", "Dr. Charles Kettering",
		},
		designations: []string{"Professor", "HOD", "Associate Professor", "Assistant Professor"},
	},
	{
		code: "SAS",
		names: []string{
			"Dr. Marie Curie", "Prof. Albert Einstein", "Dr. Isaac Newton", "Prof. Galileo Galilei",
			"Dr. Richard Feynman", "Prof. Stephen Hawking", "Dr. Neil deGrasse Tyson", "Prof. Rosalind Franklin",
			"Dr. Dmitri Mendeleev", "Prof. Louis Pasteur",
		},
		designations: []string{"Senior Professor", "Professor", "Associate Professor", "Assistant Professor"},
	},
	{
		code: "VSB",
		names: []string{
			"Dr. Peter Drucker", "Prof. Adam Smith", "Dr. Warren Buffett", "Prof. John Keynes",
			"Dr. Michael Porter", "Prof. Philip Kotler", "Dr. Jack Welch", "Prof. Henry Mintzberg",
			"Dr. Jim Collins", "Prof. Clayton Christensen",
		},
		designations: []string{"Professor", "Dean", "Associate Professor", "Assistant Professor"},
	},
	{
		code: "VSL",
		names: []string{
			"Dr. Ruth Bader Ginsburg", "Prof. Oliver Wendell Holmes", "Dr. Thurgood Marshall", "Prof. Sandra Day O'Connor",
			"Dr. William Blackstone", "Prof. Hugo Black", "Dr. Learned Hand", "Prof. Benjamin Cardozo",
			"Dr. John Marshall", "Prof. Antonin Scalia",
		},
		designations: []string{"Senior Advocate", "Professor", "Associate Professor", "HOD"},
	},
	{
		code: "VISH",
		names: []string{
			"Dr. Sigmund Freud", "Prof. Carl Jung", "Dr. B.F. Skinner", "Prof. Jean Piaget",
			"Dr. Noam Chomsky", "Prof. Jane Goodall", "Dr. Margaret Mead", "Prof. Sigmund Freud",
			"Dr. Abraham Maslow", "Prof. Erik Erikson",
		},
		designations: []string{"Professor", "Assistant Professor", "Associate Professor", "Dean"},
	},
}

// SeedDemoFaculty inserts the demo roster. Rows already present keep
// their accumulated ratings; only missing ids are inserted.
func (r *Repository) SeedDemoFaculty(logger *slog.Logger) error {
	now := time.Now().UTC()
	inserted := 0

	for _, dept := range seedCatalog {
		for i, name := range dept.names {
			gender := "men"
			if i%2 != 0 {
				gender = "women"
			}
			imageURL := fmt.Sprintf("https://randomuser.me/api/portraits/%s/%d.jpg", gender, i+10)
			interests := fmt.Sprintf("Research in %s", dept.code)

			result, err := r.db.Exec(`
				INSERT OR IGNORE INTO faculty (faculty_id, name, department, designation,
					image_url, research_interests, publications, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, fmt.Sprintf("demo_%s_%d", dept.code, i), name, dept.code,
				dept.designations[i%len(dept.designations)], imageURL, interests, "[]", now)
			if err != nil {
				return fmt.Errorf("failed to seed faculty: %w", err)
			}
			if affected, _ := result.RowsAffected(); affected > 0 {
				inserted++
			}
		}
	}

	if inserted > 0 {
		logger.Info("seeded demo faculty", "inserted", inserted)
	}
	return nil
}
