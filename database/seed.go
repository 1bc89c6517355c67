package database

import (
	"errors"
	"log"

	"github.com/biashadrive/biashadrive-backend/internal/models"
	"github.com/biashadrive/biashadrive-backend/internal/storage"
)

// SeedExperts loads the launch roster of verified experts. Existing entries
// are skipped so the seed is safe to run on every startup.
func SeedExperts(store storage.Store) {
	experts := []models.Expert{
		{
			Name:        "Jane Kariuki",
			Email:       "jane@example.com",
			Phone:       "254712345678",
			County:      "Nairobi",
			Bio:         "Certified public accountant with 8+ years experience helping Kenyan SMEs with bookkeeping, tax planning, and compliance.",
			RateMin:     2500,
			RateMax:     5000,
			Rating:      4.8,
			ReviewCount: 42,
			Verified:    true,
			Available:   true,
		},
		{
			Name:        "James Mwangi",
			Email:       "james@example.com",
			Phone:       "254700000000",
			County:      "Nairobi",
			Bio:         "Corporate lawyer specializing in business registration, contracts, and regulatory compliance for startups and SMEs.",
			RateMin:     3000,
			RateMax:     7000,
			Rating:      4.9,
			ReviewCount: 58,
			Verified:    true,
			Available:   true,
		},
		{
			Name:        "Sarah Kipchoge",
			Email:       "sarah@example.com",
			Phone:       "254722000000",
			County:      "Nairobi",
			Bio:         "Brand strategist helping SMEs build memorable brands and grow on social media and digital channels.",
			RateMin:     2000,
			RateMax:     4000,
			Rating:      4.7,
			ReviewCount: 35,
			Verified:    true,
			Available:   true,
		},
		{
			Name:        "Peter Omondi",
			Email:       "peter@example.com",
			Phone:       "254733000000",
			County:      "Mombasa",
			Bio:         "Full-stack developer and e-commerce consultant helping retailers move online and scale digitally.",
			RateMin:     3500,
			RateMax:     8000,
			Rating:      4.6,
			ReviewCount: 28,
			Verified:    true,
			Available:   true,
		},
		{
			Name:        "Grace Mutua",
			Email:       "grace@example.com",
			Phone:       "254744000000",
			County:      "Kisumu",
			Bio:         "Accountant and payroll specialist with expertise in NSSF, NHIF, and employee benefits management.",
			RateMin:     2000,
			RateMax:     4500,
			Rating:      4.8,
			ReviewCount: 44,
			Verified:    true,
			Available:   true,
		},
	}

	domains := [][]string{
		{"accounting", "tax"},
		{"legal", "compliance"},
		{"branding", "marketing"},
		{"tech", "ecommerce"},
		{"accounting", "payroll"},
	}

	log.Println("🌱 Seeding experts...")
	for i := range experts {
		expert := experts[i]
		expert.SetDomainTags(domains[i])

		_, err := store.GetExpertByEmail(expert.Email)
		if err == nil {
			log.Printf("⏭️  %s already exists", expert.Email)
			continue
		}
		if !errors.Is(err, storage.ErrExpertNotFound) {
			log.Printf("❌ Error checking %s: %v", expert.Name, err)
			continue
		}

		if _, err := store.CreateExpert(&expert); err != nil {
			log.Printf("❌ Error creating %s: %v", expert.Name, err)
			continue
		}
		log.Printf("✅ Created: %s", expert.Name)
	}
	log.Println("✨ Seeding complete!")
}
