package model

// InstructionsTitle heads the breathing instructions.
const InstructionsTitle = "Box Breathing"

// Instructions are the posture and breathing steps shown before a session.
var Instructions = []string{
	"Sit in a comfortable position with your back straight and feet flat on the floor",
	"Place one hand on your chest and the other on your abdomen to monitor your breathing",
	"Inhale slowly through your nose, allowing your abdomen to expand first, followed by a slight lift in your chest",
	"Hold your breath gently, maintaining a relaxed posture",
	"Exhale completely through your nose, letting your abdomen and chest relax naturally",
	"Pause at the bottom of your exhale before beginning the next cycle",
	"Focus on keeping your shoulders relaxed and your breathing smooth throughout",
}
