package bootstrap

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/garagedesk/garagedesk/internal/model"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Car{},
		&model.Problem{},
		&model.Ticket{},
		&model.TicketProblem{},
		&model.CarProblem{},
	)
}

// SeedAdminUser creates a development admin account if none exists.
func SeedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).
		Where("email = ?", "admin@garagedesk.local").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	password := "admin123"
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := model.User{
		Name:         "Administrator",
		Email:        "admin@garagedesk.local",
		PasswordHash: string(hashedPasswordBytes),
		Role:         model.RoleAdmin,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Println("Admin user seeded")
	log.Println("   Email: admin@garagedesk.local")
	log.Println("   Password: admin123")

	return nil
}

// SeedProblems fills the problem catalog with the common failure modes a
// repair shop sees. Inactive entries are kept so old tickets still resolve.
func SeedProblems(db *gorm.DB) error {
	defaultProblems := []model.Problem{
		{Name: "Engine won't start", Category: model.CategoryEngine, Description: strPtr("Engine cranks but does not fire, or does not crank at all"), IsActive: true},
		{Name: "Engine overheating", Category: model.CategoryEngine, Description: strPtr("Temperature gauge in the red, coolant loss or steam"), IsActive: true},
		{Name: "Oil leak", Category: model.CategoryEngine, Description: strPtr("Visible oil under the car or dropping oil level"), IsActive: true},
		{Name: "Slipping gears", Category: model.CategoryTransmission, Description: strPtr("Transmission slips out of gear or shifts erratically"), IsActive: true},
		{Name: "Clutch replacement", Category: model.CategoryTransmission, IsActive: true},
		{Name: "Dead battery", Category: model.CategoryElectrical, Description: strPtr("Battery does not hold charge"), IsActive: true},
		{Name: "Alternator failure", Category: model.CategoryElectrical, IsActive: true},
		{Name: "Faulty wiring", Category: model.CategoryElectrical, Description: strPtr("Intermittent electrical faults, blown fuses"), IsActive: true},
		{Name: "Worn brake pads", Category: model.CategoryBrakes, Description: strPtr("Squealing or grinding when braking"), IsActive: true},
		{Name: "Brake fluid leak", Category: model.CategoryBrakes, IsActive: true},
		{Name: "Worn shock absorbers", Category: model.CategorySuspension, Description: strPtr("Bouncy ride, nose dives under braking"), IsActive: true},
		{Name: "Broken coil spring", Category: model.CategorySuspension, IsActive: true},
		{Name: "Steering wheel vibration", Category: model.CategorySteering, Description: strPtr("Vibration at speed, usually alignment or balance"), IsActive: true},
		{Name: "Power steering failure", Category: model.CategorySteering, IsActive: true},
		{Name: "Rust repair", Category: model.CategoryBody, Description: strPtr("Corrosion on panels or underbody"), IsActive: true},
		{Name: "Dent and paint repair", Category: model.CategoryBody, IsActive: true},
		{Name: "Annual inspection", Category: model.CategoryOther, Description: strPtr("General roadworthiness check"), IsActive: true},
		{Name: "Carburetor rebuild", Category: model.CategoryEngine, Description: strPtr("Legacy service, modern cars are fuel injected"), IsActive: false},
		{Name: "Cassette player repair", Category: model.CategoryElectrical, IsActive: false},
	}

	for _, problem := range defaultProblems {
		var count int64
		if err := db.Model(&model.Problem{}).
			Where("name = ?", problem.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&problem).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func strPtr(s string) *string {
	return &s
}
