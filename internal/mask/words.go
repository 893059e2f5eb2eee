package mask

// wordList holds the candidate answers for text mode: common lowercase
// words of 3-5 letters, short enough to read during a single loop.
var wordList = []string{
	"ant", "arm", "bag", "bat", "bed", "bee", "box", "bus", "cat", "cow",
	"cup", "dog", "ear", "egg", "eye", "fan", "fog", "fox", "hat", "ice",
	"jam", "key", "leg", "log", "map", "net", "owl", "pen", "pig", "pot",
	"sun", "tea", "van", "web", "zoo",
	"bird", "boat", "book", "cake", "coin", "corn", "desk", "door", "drum",
	"fish", "frog", "gate", "gold", "hand", "king", "lamp", "leaf", "lion",
	"milk", "moon", "nest", "rain", "ring", "rock", "rope", "sand", "ship",
	"shoe", "snow", "song", "star", "tree", "wind", "wolf",
	"apple", "bread", "brick", "chair", "clock", "cloud", "dance", "eagle",
	"flame", "glass", "grape", "green", "horse", "house", "lemon", "light",
	"mouse", "music", "ocean", "piano", "plant", "river", "sheep", "smile",
	"stone", "sugar", "table", "tiger", "train", "water", "whale", "wheel",
}
