package hydration

var motivationalMessages = []string{
	"Sip sip hooray! You're doing great! 💧",
	"Water is life! Keep hydrating! 🌊",
	"Your body thanks you for each drop! 🙏",
	"Stay hydrated, stay healthy! 💪",
	"Every drop counts toward your goal! ⚡",
	"You're making waves with your hydration! 🌊",
	"Hydration is the key to energy! 🔋",
	"Keep going, you're on a roll! 🎯",
	"Your hydration journey is inspiring! ✨",
	"Water you waiting for? Drink up! 🚀",
}

// MotivationalMessage picks a dashboard greeting. intn must behave like
// rand.IntN.
func MotivationalMessage(intn func(n int) int) string {
	return motivationalMessages[intn(len(motivationalMessages))]
}
