package site

// Stat is one impact figure on the home page.
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Program is one of the organisation's programmes.
type Program struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Section is a titled paragraph block.
type Section struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// About is the organisation profile.
type About struct {
	Name    string    `json:"name"`
	Tagline string    `json:"tagline"`
	Mission []string  `json:"mission"`
	Vision  string    `json:"vision"`
	Values  []Section `json:"values"`
	Story   []Section `json:"story"`
}

const mission = "To empower youth through top-tier sports training programs, educational opportunities, " +
	"and entertainment, while creating pathways for personal growth, social inclusion, and professional sports careers."

var impactStats = []Stat{
	{Label: "Youth Trained", Value: "500+"},
	{Label: "Programs Running", Value: "15"},
	{Label: "Community Events", Value: "50+"},
	{Label: "Success Stories", Value: "200+"},
}

var programs = []Program{
	{Title: "Football Academy", Description: "Professional football training for youth aged 12-18 with experienced coaches"},
	{Title: "Youth Center", Description: "Arts, entertainment, and talent development programs for creative expression"},
	{Title: "TVET School", Description: "Technical education in sports management, coaching, and fitness training"},
	{Title: "Community Fitness", Description: "Monthly fitness events and long-term wellness programs for all ages"},
}

var about = About{
	Name:    "EJO Heza Sport Training Organization",
	Tagline: "Empowering youth through sports training, community engagement, and personal development programs.",
	Mission: []string{
		"EJO Heza Sport Training Organization is dedicated to empowering youth through comprehensive sports training " +
			"programs that foster athletic excellence, personal growth, and community engagement.",
		"We believe that sports have the power to transform lives, build character, and create lasting positive change " +
			"in our communities. Through our programs, we aim to develop not just skilled athletes, but confident, " +
			"resilient, and compassionate young leaders.",
	},
	Vision: "To be the leading sports training organization that creates pathways for youth to achieve their full " +
		"potential through sports, education, and community service.",
	Values: []Section{
		{Title: "Excellence", Body: "We strive for the highest standards in sports training and development."},
		{Title: "Inclusion", Body: "Creating opportunities for all youth, regardless of background or ability."},
		{Title: "Community", Body: "Building strong connections and supporting our local community."},
		{Title: "Growth", Body: "Fostering both athletic and personal development in every participant."},
	},
	Story: []Section{
		{Title: "Founded on Passion", Body: "EJO Heza was born from a simple belief: every young person deserves the " +
			"opportunity to discover their potential through sports. Our founders saw the transformative power of " +
			"athletics in their own lives and wanted to share that gift with their community."},
		{Title: "Growing Impact", Body: "What started as a small local initiative has grown into a comprehensive " +
			"organization serving hundreds of youth each year. We've expanded our programs to include not just sports " +
			"training, but also mentorship, educational support, and community service opportunities."},
		{Title: "Looking Forward", Body: "As we continue to grow, our commitment remains unchanged: to provide every " +
			"young person with the support, training, and opportunities they need to thrive both on and off the field. " +
			"Together, we're building stronger communities, one athlete at a time."},
	},
}
