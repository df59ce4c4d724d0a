package lexicon

// Builtin returns the compiled-in Korean seed dictionary. It covers the
// high-frequency vocabulary the reconstruction engine needs to be useful out
// of the box: courtesy phrases, pronouns, everyday nouns, verb and adjective
// stems, adverbs, and the particle inventory. File or database sources extend
// or replace it via [Merge].
//
// Verbs and adjectives are stored as bare stems so SplitStem can recognize
// conjugated forms (stem + known ending).
func Builtin() []Entry {
	out := make([]Entry, len(builtinEntries))
	copy(out, builtinEntries)
	return out
}

// BuiltinEndings returns the compiled-in list of morphological endings used
// for stem+ending analysis. This is broader than the sentence-final set the
// boundary detector uses: connective endings belong here too.
func BuiltinEndings() []string {
	out := make([]string, len(builtinEndings))
	copy(out, builtinEndings)
	return out
}

var builtinEntries = []Entry{
	// ─────────────────────────────────────────────────────────────────────────
	// Greetings and courtesy phrases
	// ─────────────────────────────────────────────────────────────────────────
	{Word: "안녕하세요", Frequency: 0.99, Category: CategoryGreeting},
	{Word: "안녕", Frequency: 0.92, Category: CategoryGreeting},
	{Word: "감사합니다", Frequency: 0.99, Category: CategoryGreeting},
	{Word: "고맙습니다", Frequency: 0.95, Category: CategoryGreeting},
	{Word: "죄송합니다", Frequency: 0.95, Category: CategoryGreeting},
	{Word: "미안합니다", Frequency: 0.9, Category: CategoryGreeting},
	{Word: "반갑습니다", Frequency: 0.9, Category: CategoryGreeting},
	{Word: "환영합니다", Frequency: 0.85, Category: CategoryGreeting},
	{Word: "수고하셨습니다", Frequency: 0.85, Category: CategoryGreeting},
	{Word: "어서오세요", Frequency: 0.85, Category: CategoryGreeting},
	{Word: "괜찮습니다", Frequency: 0.85, Category: CategoryGreeting},
	{Word: "알겠습니다", Frequency: 0.9, Category: CategoryGreeting},
	{Word: "잠시만요", Frequency: 0.8, Category: CategoryGreeting},
	{Word: "실례합니다", Frequency: 0.8, Category: CategoryGreeting},
	{Word: "처음뵙겠습니다", Frequency: 0.75, Category: CategoryGreeting},

	// ─────────────────────────────────────────────────────────────────────────
	// Pronouns and demonstratives
	// ─────────────────────────────────────────────────────────────────────────
	{Word: "저", Frequency: 0.95, Category: CategoryPronoun},
	{Word: "나", Frequency: 0.95, Category: CategoryPronoun},
	{Word: "너", Frequency: 0.9, Category: CategoryPronoun},
	{Word: "우리", Frequency: 0.95, Category: CategoryPronoun},
	{Word: "저희", Frequency: 0.9, Category: CategoryPronoun},
	{Word: "당신", Frequency: 0.85, Category: CategoryPronoun},
	{Word: "그", Frequency: 0.85, Category: CategoryPronoun},
	{Word: "이", Frequency: 0.85, Category: CategoryPronoun},
	{Word: "그녀", Frequency: 0.8, Category: CategoryPronoun},
	{Word: "누구", Frequency: 0.85, Category: CategoryPronoun},
	{Word: "여기", Frequency: 0.9, Category: CategoryPronoun},
	{Word: "거기", Frequency: 0.85, Category: CategoryPronoun},
	{Word: "저기", Frequency: 0.85, Category: CategoryPronoun},
	{Word: "이것", Frequency: 0.85, Category: CategoryPronoun},
	{Word: "그것", Frequency: 0.85, Category: CategoryPronoun},
	{Word: "저것", Frequency: 0.8, Category: CategoryPronoun},
	{Word: "이거", Frequency: 0.9, Category: CategoryPronoun},
	{Word: "그거", Frequency: 0.85, Category: CategoryPronoun},
	{Word: "저거", Frequency: 0.8, Category: CategoryPronoun},
	{Word: "무엇", Frequency: 0.85, Category: CategoryPronoun},
	{Word: "뭐", Frequency: 0.9, Category: CategoryPronoun},
	{Word: "언제", Frequency: 0.85, Category: CategoryPronoun},
	{Word: "어디", Frequency: 0.85, Category: CategoryPronoun},

	// ─────────────────────────────────────────────────────────────────────────
	// Common nouns
	// ─────────────────────────────────────────────────────────────────────────
	{Word: "사람", Frequency: 0.95, Category: CategoryNoun},
	{Word: "시간", Frequency: 0.95, Category: CategoryNoun},
	{Word: "오늘", Frequency: 0.95, Category: CategoryNoun},
	{Word: "내일", Frequency: 0.9, Category: CategoryNoun},
	{Word: "어제", Frequency: 0.9, Category: CategoryNoun},
	{Word: "날씨", Frequency: 0.9, Category: CategoryNoun},
	{Word: "밥", Frequency: 0.9, Category: CategoryNoun},
	{Word: "물", Frequency: 0.9, Category: CategoryNoun},
	{Word: "집", Frequency: 0.9, Category: CategoryNoun},
	{Word: "학교", Frequency: 0.9, Category: CategoryNoun},
	{Word: "회사", Frequency: 0.9, Category: CategoryNoun},
	{Word: "친구", Frequency: 0.9, Category: CategoryNoun},
	{Word: "가족", Frequency: 0.85, Category: CategoryNoun},
	{Word: "이름", Frequency: 0.9, Category: CategoryNoun},
	{Word: "나라", Frequency: 0.85, Category: CategoryNoun},
	{Word: "한국", Frequency: 0.9, Category: CategoryNoun},
	{Word: "한국어", Frequency: 0.85, Category: CategoryNoun},
	{Word: "서울", Frequency: 0.85, Category: CategoryNoun},
	{Word: "말", Frequency: 0.85, Category: CategoryNoun},
	{Word: "말씀", Frequency: 0.8, Category: CategoryNoun},
	{Word: "이야기", Frequency: 0.85, Category: CategoryNoun},
	{Word: "생각", Frequency: 0.85, Category: CategoryNoun},
	{Word: "문제", Frequency: 0.85, Category: CategoryNoun},
	{Word: "질문", Frequency: 0.85, Category: CategoryNoun},
	{Word: "대답", Frequency: 0.8, Category: CategoryNoun},
	{Word: "전화", Frequency: 0.85, Category: CategoryNoun},
	{Word: "음식", Frequency: 0.85, Category: CategoryNoun},
	{Word: "커피", Frequency: 0.85, Category: CategoryNoun},
	{Word: "책", Frequency: 0.85, Category: CategoryNoun},
	{Word: "영화", Frequency: 0.8, Category: CategoryNoun},
	{Word: "음악", Frequency: 0.8, Category: CategoryNoun},
	{Word: "노래", Frequency: 0.8, Category: CategoryNoun},
	{Word: "아침", Frequency: 0.85, Category: CategoryNoun},
	{Word: "점심", Frequency: 0.85, Category: CategoryNoun},
	{Word: "저녁", Frequency: 0.85, Category: CategoryNoun},
	{Word: "밤", Frequency: 0.85, Category: CategoryNoun},
	{Word: "주말", Frequency: 0.8, Category: CategoryNoun},
	{Word: "시작", Frequency: 0.8, Category: CategoryNoun},
	{Word: "끝", Frequency: 0.8, Category: CategoryNoun},
	{Word: "번역", Frequency: 0.8, Category: CategoryNoun},
	{Word: "회의", Frequency: 0.8, Category: CategoryNoun},
	{Word: "자리", Frequency: 0.75, Category: CategoryNoun},
	{Word: "나무", Frequency: 0.8, Category: CategoryNoun},
	{Word: "바다", Frequency: 0.75, Category: CategoryNoun},
	{Word: "하늘", Frequency: 0.75, Category: CategoryNoun},
	{Word: "마음", Frequency: 0.8, Category: CategoryNoun},
	{Word: "돈", Frequency: 0.85, Category: CategoryNoun},
	{Word: "일", Frequency: 0.85, Category: CategoryNoun},
	{Word: "년", Frequency: 0.8, Category: CategoryNoun},
	{Word: "달", Frequency: 0.75, Category: CategoryNoun},
	{Word: "주", Frequency: 0.7, Category: CategoryNoun},
	{Word: "분", Frequency: 0.8, Category: CategoryNoun},
	{Word: "거", Frequency: 0.85, Category: CategoryNoun},
	{Word: "것", Frequency: 0.85, Category: CategoryNoun},
	{Word: "때", Frequency: 0.85, Category: CategoryNoun},

	// ─────────────────────────────────────────────────────────────────────────
	// Verb stems
	// ─────────────────────────────────────────────────────────────────────────
	{Word: "하", Frequency: 0.95, Category: CategoryVerb},
	{Word: "가", Frequency: 0.9, Category: CategoryVerb},
	{Word: "오", Frequency: 0.9, Category: CategoryVerb},
	{Word: "먹", Frequency: 0.9, Category: CategoryVerb},
	{Word: "마시", Frequency: 0.85, Category: CategoryVerb},
	{Word: "보", Frequency: 0.9, Category: CategoryVerb},
	{Word: "듣", Frequency: 0.85, Category: CategoryVerb},
	{Word: "말하", Frequency: 0.85, Category: CategoryVerb},
	{Word: "읽", Frequency: 0.8, Category: CategoryVerb},
	{Word: "쓰", Frequency: 0.8, Category: CategoryVerb},
	{Word: "만나", Frequency: 0.85, Category: CategoryVerb},
	{Word: "알", Frequency: 0.9, Category: CategoryVerb},
	{Word: "모르", Frequency: 0.85, Category: CategoryVerb},
	{Word: "좋아하", Frequency: 0.85, Category: CategoryVerb},
	{Word: "사", Frequency: 0.8, Category: CategoryVerb},
	{Word: "살", Frequency: 0.8, Category: CategoryVerb},
	{Word: "주", Frequency: 0.85, Category: CategoryVerb},
	{Word: "받", Frequency: 0.8, Category: CategoryVerb},
	{Word: "배우", Frequency: 0.8, Category: CategoryVerb},
	{Word: "가르치", Frequency: 0.75, Category: CategoryVerb},
	{Word: "도와주", Frequency: 0.75, Category: CategoryVerb},
	{Word: "기다리", Frequency: 0.8, Category: CategoryVerb},
	{Word: "시작하", Frequency: 0.75, Category: CategoryVerb},
	{Word: "끝나", Frequency: 0.75, Category: CategoryVerb},
	{Word: "생각하", Frequency: 0.8, Category: CategoryVerb},
	{Word: "이야기하", Frequency: 0.75, Category: CategoryVerb},
	{Word: "공부하", Frequency: 0.8, Category: CategoryVerb},
	{Word: "일하", Frequency: 0.8, Category: CategoryVerb},
	{Word: "전화하", Frequency: 0.75, Category: CategoryVerb},
	{Word: "사랑하", Frequency: 0.8, Category: CategoryVerb},
	{Word: "앉", Frequency: 0.7, Category: CategoryVerb},
	{Word: "서", Frequency: 0.7, Category: CategoryVerb},
	{Word: "자", Frequency: 0.8, Category: CategoryVerb},
	{Word: "일어나", Frequency: 0.75, Category: CategoryVerb},
	{Word: "만들", Frequency: 0.75, Category: CategoryVerb},
	{Word: "찾", Frequency: 0.75, Category: CategoryVerb},
	{Word: "묻", Frequency: 0.7, Category: CategoryVerb},
	{Word: "대답하", Frequency: 0.7, Category: CategoryVerb},
	// Contracted spoken stems (하+여 → 해, 되+어 → 돼, 보+아 → 봐, 주+어 → 줘).
	// Suffix analysis is surface-level, so these carry their own entries.
	{Word: "해", Frequency: 0.9, Category: CategoryVerb},
	{Word: "돼", Frequency: 0.8, Category: CategoryVerb},
	{Word: "봐", Frequency: 0.75, Category: CategoryVerb},
	{Word: "줘", Frequency: 0.7, Category: CategoryVerb},

	// ─────────────────────────────────────────────────────────────────────────
	// Adjective stems
	// ─────────────────────────────────────────────────────────────────────────
	{Word: "좋", Frequency: 0.9, Category: CategoryAdjective},
	{Word: "나쁘", Frequency: 0.8, Category: CategoryAdjective},
	{Word: "크", Frequency: 0.85, Category: CategoryAdjective},
	{Word: "작", Frequency: 0.85, Category: CategoryAdjective},
	{Word: "많", Frequency: 0.85, Category: CategoryAdjective},
	{Word: "적", Frequency: 0.75, Category: CategoryAdjective},
	{Word: "예쁘", Frequency: 0.8, Category: CategoryAdjective},
	{Word: "아름답", Frequency: 0.75, Category: CategoryAdjective},
	{Word: "맛있", Frequency: 0.85, Category: CategoryAdjective},
	{Word: "재미있", Frequency: 0.8, Category: CategoryAdjective},
	{Word: "어렵", Frequency: 0.8, Category: CategoryAdjective},
	{Word: "쉽", Frequency: 0.8, Category: CategoryAdjective},
	{Word: "바쁘", Frequency: 0.8, Category: CategoryAdjective},
	{Word: "괜찮", Frequency: 0.85, Category: CategoryAdjective},
	{Word: "행복하", Frequency: 0.75, Category: CategoryAdjective},
	{Word: "슬프", Frequency: 0.7, Category: CategoryAdjective},
	{Word: "비싸", Frequency: 0.75, Category: CategoryAdjective},
	{Word: "싸", Frequency: 0.7, Category: CategoryAdjective},
	{Word: "덥", Frequency: 0.75, Category: CategoryAdjective},
	{Word: "춥", Frequency: 0.75, Category: CategoryAdjective},
	{Word: "따뜻하", Frequency: 0.7, Category: CategoryAdjective},
	{Word: "시원하", Frequency: 0.7, Category: CategoryAdjective},
	{Word: "빠르", Frequency: 0.75, Category: CategoryAdjective},
	{Word: "느리", Frequency: 0.7, Category: CategoryAdjective},

	// ─────────────────────────────────────────────────────────────────────────
	// Adverbs
	// ─────────────────────────────────────────────────────────────────────────
	{Word: "잘", Frequency: 0.9, Category: CategoryAdverb},
	{Word: "못", Frequency: 0.85, Category: CategoryAdverb},
	{Word: "아주", Frequency: 0.85, Category: CategoryAdverb},
	{Word: "너무", Frequency: 0.9, Category: CategoryAdverb},
	{Word: "정말", Frequency: 0.9, Category: CategoryAdverb},
	{Word: "진짜", Frequency: 0.85, Category: CategoryAdverb},
	{Word: "조금", Frequency: 0.85, Category: CategoryAdverb},
	{Word: "많이", Frequency: 0.85, Category: CategoryAdverb},
	{Word: "빨리", Frequency: 0.8, Category: CategoryAdverb},
	{Word: "천천히", Frequency: 0.75, Category: CategoryAdverb},
	{Word: "같이", Frequency: 0.8, Category: CategoryAdverb},
	{Word: "함께", Frequency: 0.75, Category: CategoryAdverb},
	{Word: "지금", Frequency: 0.9, Category: CategoryAdverb},
	{Word: "벌써", Frequency: 0.75, Category: CategoryAdverb},
	{Word: "아직", Frequency: 0.8, Category: CategoryAdverb},
	{Word: "다시", Frequency: 0.8, Category: CategoryAdverb},
	{Word: "먼저", Frequency: 0.75, Category: CategoryAdverb},
	{Word: "혹시", Frequency: 0.75, Category: CategoryAdverb},
	{Word: "항상", Frequency: 0.75, Category: CategoryAdverb},
	{Word: "가끔", Frequency: 0.7, Category: CategoryAdverb},

	// ─────────────────────────────────────────────────────────────────────────
	// Interjections
	// ─────────────────────────────────────────────────────────────────────────
	{Word: "네", Frequency: 0.95, Category: CategoryInterjection},
	{Word: "아니요", Frequency: 0.9, Category: CategoryInterjection},
	{Word: "예", Frequency: 0.9, Category: CategoryInterjection},
	{Word: "응", Frequency: 0.8, Category: CategoryInterjection},
	{Word: "글쎄", Frequency: 0.7, Category: CategoryInterjection},
	{Word: "아", Frequency: 0.8, Category: CategoryInterjection},
	{Word: "어", Frequency: 0.75, Category: CategoryInterjection},
	{Word: "와", Frequency: 0.7, Category: CategoryInterjection},

	// ─────────────────────────────────────────────────────────────────────────
	// Particles (kept apart from the word table; they attach leftward)
	// ─────────────────────────────────────────────────────────────────────────
	{Word: "은", Frequency: 0.95, Category: CategoryParticle},
	{Word: "는", Frequency: 0.95, Category: CategoryParticle},
	{Word: "이", Frequency: 0.95, Category: CategoryParticle},
	{Word: "가", Frequency: 0.95, Category: CategoryParticle},
	{Word: "을", Frequency: 0.95, Category: CategoryParticle},
	{Word: "를", Frequency: 0.95, Category: CategoryParticle},
	{Word: "에", Frequency: 0.95, Category: CategoryParticle},
	{Word: "에서", Frequency: 0.9, Category: CategoryParticle},
	{Word: "에게", Frequency: 0.85, Category: CategoryParticle},
	{Word: "께", Frequency: 0.8, Category: CategoryParticle},
	{Word: "의", Frequency: 0.9, Category: CategoryParticle},
	{Word: "도", Frequency: 0.9, Category: CategoryParticle},
	{Word: "만", Frequency: 0.85, Category: CategoryParticle},
	{Word: "와", Frequency: 0.85, Category: CategoryParticle},
	{Word: "과", Frequency: 0.85, Category: CategoryParticle},
	{Word: "랑", Frequency: 0.8, Category: CategoryParticle},
	{Word: "이랑", Frequency: 0.75, Category: CategoryParticle},
	{Word: "하고", Frequency: 0.8, Category: CategoryParticle},
	{Word: "부터", Frequency: 0.8, Category: CategoryParticle},
	{Word: "까지", Frequency: 0.8, Category: CategoryParticle},
	{Word: "로", Frequency: 0.85, Category: CategoryParticle},
	{Word: "으로", Frequency: 0.85, Category: CategoryParticle},
	{Word: "보다", Frequency: 0.75, Category: CategoryParticle},
	{Word: "처럼", Frequency: 0.75, Category: CategoryParticle},
	{Word: "마다", Frequency: 0.7, Category: CategoryParticle},
	{Word: "조차", Frequency: 0.65, Category: CategoryParticle},
	{Word: "밖에", Frequency: 0.7, Category: CategoryParticle},
	{Word: "요", Frequency: 0.9, Category: CategoryParticle},
	// The copula 이다 is classified as a particle in school grammar and its
	// conjugations attach directly to nouns, so they live here.
	{Word: "입니다", Frequency: 0.95, Category: CategoryParticle},
	{Word: "입니까", Frequency: 0.85, Category: CategoryParticle},
	{Word: "이에요", Frequency: 0.85, Category: CategoryParticle},
	{Word: "이야", Frequency: 0.75, Category: CategoryParticle},
}

// builtinEndings lists known morphological endings, both sentence-final and
// connective. SplitStem tries them longest-first.
var builtinEndings = []string{
	// Polite/formal sentence-final endings.
	"습니다", "습니까", "았습니다", "었습니다", "겠습니다", "셨습니다",
	"어요", "아요", "에요", "예요", "세요", "셨어요", "았어요", "었어요",
	"네요", "지요", "죠", "군요", "는군요", "잖아요", "거든요",
	"을게요", "을까요", "는데요", "습니다만",
	// Plain endings.
	"다", "요", "야", "았다", "었다", "겠다", "는다",
	// Connective endings.
	"고", "서", "면", "으면", "지만", "는데", "은데", "니까", "으니까",
	"려고", "으려고", "아서", "어서", "아도", "어도", "며", "으며",
	// Nominal/adnominal endings.
	"게", "기", "은", "는", "을", "던",
}
